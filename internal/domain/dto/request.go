// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

// StartContainerRequest represents the JSON request body for starting a preset
// container.
//
// All fields are optional. Empty values fall back to the preset defaults, so
// an empty body starts a container with its pinned image and no credentials.
//
// @Description Request to start a disposable container from a preset
// @Example {"image": "mongo:4.0.10", "username": "root", "password": "password"}
type StartContainerRequest struct {
	// Image overrides the preset's pinned container image.
	Image string `json:"image,omitempty" example:"mongo:4.0.10"`
	// Database names the initial database for presets that create one.
	Database string `json:"database,omitempty" example:"test"`
	// Username enables authentication for presets that support it.
	Username string `json:"username,omitempty" example:"root"`
	// Password pairs with Username.
	Password string `json:"password,omitempty" example:"password"`
} // @name StartContainerRequest

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

var (
	// ErrPasswordWithoutUsername is returned when a password is supplied alone.
	ErrPasswordWithoutUsername = &ValidationError{
		Field:   "password",
		Message: "requires username to be set",
	}
)

// Validate performs custom validation on the request.
// Returns an error if validation fails, nil otherwise.
func (r *StartContainerRequest) Validate() error {
	if r.Password != "" && r.Username == "" {
		return ErrPasswordWithoutUsername
	}
	return nil
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
