package keycloak

import "time"

type settings struct {
	image          string
	adminUser      string
	adminPassword  string
	realmJSON      []byte
	startupTimeout time.Duration
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		adminUser:      DefaultAdminUser,
		adminPassword:  DefaultAdminPassword,
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

// WithAdmin overrides the bootstrap admin credentials.
func WithAdmin(user, password string) Option {
	return func(s *settings) {
		if user != "" {
			s.adminUser = user
		}
		if password != "" {
			s.adminPassword = password
		}
	}
}

// WithRealmImport provisions a realm from its JSON definition at startup.
func WithRealmImport(realmJSON []byte) Option {
	return func(s *settings) {
		s.realmJSON = realmJSON
	}
}

// WithStartupTimeout bounds the wait for the master realm to answer.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
