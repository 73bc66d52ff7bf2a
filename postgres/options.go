package postgres

import "time"

type settings struct {
	image          string
	user           string
	password       string
	database       string
	startupTimeout time.Duration
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		user:           DefaultUser,
		password:       DefaultPassword,
		database:       DefaultDatabase,
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

// WithCredentials overrides the superuser credentials.
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

// WithDatabase overrides the name of the database provisioned at startup.
func WithDatabase(database string) Option {
	return func(s *settings) {
		if database != "" {
			s.database = database
		}
	}
}

// WithStartupTimeout bounds the wait for the startup log lines.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
