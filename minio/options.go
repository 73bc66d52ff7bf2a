package minio

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
		user:           DefaultRootUser,
		password:       DefaultRootPassword,
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

// WithCredentials overrides the root user. MinIO rejects passwords shorter
// than eight characters at startup.
func WithCredentials(user, password string) Option {
	return func(s *settings) {
		if user != "" {
			s.user = user
		}
		if password != "" {
			s.password = password
		}
	}
}

// WithStartupTimeout bounds the wait for the liveness endpoint.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
