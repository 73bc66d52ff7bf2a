package mongodb

import "time"

type settings struct {
	image          string
	creds          Credentials
	startupTimeout time.Duration
	bootstrap      BootstrapConfig
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		startupTimeout: defaultStartupTimeout,
		bootstrap:      DefaultBootstrapConfig(),
	}
}

// Option customizes Run.
type Option func(*settings)

// WithImage overrides the container image. The image must ship the legacy
// mongo shell, which the replica set bootstrap drives over docker exec.
func WithImage(image string) Option {
	return func(s *settings) {
		if image != "" {
			s.image = image
		}
	}
}

// WithAuth starts the node with root credentials and authentication enabled.
// Empty values fall back to DefaultRootUsername and DefaultRootPassword.
func WithAuth(username, password string) Option {
	return func(s *settings) {
		if username == "" {
			username = DefaultRootUsername
		}
		if password == "" {
			password = DefaultRootPassword
		}
		s.creds = Credentials{Enabled: true, Username: username, Password: password}
	}
}

// WithStartupTimeout bounds the wait for the process-level startup log line.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}

// WithBootstrapConfig overrides the attempt ceiling and pause used by both
// phases of the replica set bootstrap.
func WithBootstrapConfig(cfg BootstrapConfig) Option {
	return func(s *settings) {
		s.bootstrap = cfg
	}
}
