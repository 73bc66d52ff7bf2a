package redis

import "time"

type settings struct {
	image          string
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

// WithPassword starts the server with requirepass enabled.
func WithPassword(password string) Option {
	return func(s *settings) {
		s.password = password
	}
}

// WithStartupTimeout bounds the wait for the startup log line.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
