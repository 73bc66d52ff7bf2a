// Package i18n provides internationalization support for the embedded daemon.
package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates an invalid request body.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyUnauthorized indicates missing or invalid authentication.
	ErrKeyUnauthorized = "error.unauthorized"
	// ErrKeyAPIKeyRequired indicates that an API key is required.
	ErrKeyAPIKeyRequired = "error.api_key_required"
	// ErrKeyInvalidAPIKey indicates an invalid API key.
	ErrKeyInvalidAPIKey = "error.invalid_api_key"
	// ErrKeyForbidden indicates insufficient permissions.
	ErrKeyForbidden = "error.forbidden"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyConflict indicates a conflict with current state.
	ErrKeyConflict = "error.conflict"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyUnknownPreset indicates an unsupported container preset.
	ErrKeyUnknownPreset = "error.unknown_preset"
	// ErrKeyContainerLimit indicates the container cap has been reached.
	ErrKeyContainerLimit = "error.container_limit"
	// ErrKeyContainerStartFailed indicates a container failed to start.
	ErrKeyContainerStartFailed = "error.container_start_failed"
	// ErrKeyContainerNotFound indicates an unknown container session.
	ErrKeyContainerNotFound = "error.container_not_found"
	// ErrKeyContainerTerminateFailed indicates a container failed to terminate.
	ErrKeyContainerTerminateFailed = "error.container_terminate_failed"
	// ErrKeyContainerLogsFailed indicates container logs could not be read.
	ErrKeyContainerLogsFailed = "error.container_logs_failed"
	// ErrKeyValidationCredentials indicates invalid credential fields.
	ErrKeyValidationCredentials = "error.validation.credentials"
)

// Success message translation keys.
const (
	// SuccessKeyContainerStarted indicates a successful container start.
	SuccessKeyContainerStarted = "success.container_started"
)
