package kafka

import "time"

type settings struct {
	image          string
	clusterID      string
	startupTimeout time.Duration
}

func defaultSettings() settings {
	return settings{
		image:          DefaultImage,
		clusterID:      DefaultClusterID,
		startupTimeout: defaultStartupTimeout,
	}
}

// Option customizes Run.
type Option func(*settings)

// WithImage overrides the container image. Only Confluent cp-kafka images
// are supported; the starter script relies on their docker run scripts.
func WithImage(image string) Option {
	return func(s *settings) {
		if image != "" {
			s.image = image
		}
	}
}

// WithClusterID overrides the cluster id used to format KRaft storage.
func WithClusterID(id string) Option {
	return func(s *settings) {
		if id != "" {
			s.clusterID = id
		}
	}
}

// WithStartupTimeout bounds the wait for the broker to leave log recovery.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.startupTimeout = timeout
		}
	}
}
