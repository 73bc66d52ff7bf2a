package registry

import "time"

type settings struct {
	image          string
	user           string
	password       string
	startupTimeout time.Duration
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		startupTimeout: defaultStartupTimeout,
	}
}

// Option customizes Run.
type Option func(*settings)

// WithImage overrides the container image.
func WithImage(image string) Option {
	return func(s *settings) {
		if image != "" {
			s.image = image
		}
	}
}

// WithBasicAuth protects the registry with the given credentials.
func WithBasicAuth(user, password string) Option {
	return func(s *settings) {
		s.user = user
		s.password = password
	}
}

// WithStartupTimeout bounds the wait for the version endpoint.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
