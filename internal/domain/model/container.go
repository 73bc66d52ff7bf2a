package model

import "time"

// ContainerInfo describes a container session managed by the daemon.
//
// @Description Running container session with its connection endpoints
type ContainerInfo struct {
	// ID is the daemon-assigned session identifier
	ID string `json:"id" example:"3f1c9a2e-8b4d-4f6a-9c0e-5d7b1a2c3e4f"`
	// Preset is the backend preset this session runs
	Preset Preset `json:"preset" example:"mongodb"`
	// Image is the container image in use
	Image string `json:"image" example:"mongo:4.0.10"`
	// StartedAt is when the container became ready
	StartedAt time.Time `json:"started_at" example:"2025-01-15T10:30:00Z"`
	// Endpoints maps endpoint names to connection strings
	Endpoints map[string]string `json:"endpoints"`
}

// Endpoint returns the named endpoint, or the empty string when absent.
func (c ContainerInfo) Endpoint(name string) string {
	return c.Endpoints[name]
}

// Uptime returns how long the session has been running at the given instant.
func (c ContainerInfo) Uptime(now time.Time) time.Duration {
	if c.StartedAt.IsZero() || now.Before(c.StartedAt) {
		return 0
	}
	return now.Sub(c.StartedAt)
}
