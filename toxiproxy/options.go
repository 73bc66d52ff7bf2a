package toxiproxy

import "time"

type settings struct {
	image          string
	proxyPorts     []string
	startupTimeout time.Duration
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		proxyPorts:     []string{DefaultProxyPort},
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

// WithProxyPorts replaces the set of in-container ports proxies may listen
// on. Ports use the nat syntax, e.g. "8667/tcp".
func WithProxyPorts(ports ...string) Option {
	return func(s *settings) {
		if len(ports) > 0 {
			s.proxyPorts = ports
		}
	}
}

// WithStartupTimeout bounds the wait for the control API to listen.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
