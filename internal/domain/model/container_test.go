package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContainerInfo_Endpoint(t *testing.T) {
	info := ContainerInfo{
		ID:     "abc-123",
		Preset: PresetMongoDB,
		Endpoints: map[string]string{
			"url": "mongodb://localhost:32771/test",
		},
	}

	assert.Equal(t, "mongodb://localhost:32771/test", info.Endpoint("url"))
	assert.Empty(t, info.Endpoint("missing"))
}

func TestContainerInfo_Uptime(t *testing.T) {
	started := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		info     ContainerInfo
		now      time.Time
		expected time.Duration
	}{
		{
			name:     "running for a minute",
			info:     ContainerInfo{StartedAt: started},
			now:      started.Add(time.Minute),
			expected: time.Minute,
		},
		{
			name:     "zero start time",
			info:     ContainerInfo{},
			now:      started,
			expected: 0,
		},
		{
			name:     "clock before start",
			info:     ContainerInfo{StartedAt: started},
			now:      started.Add(-time.Second),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.info.Uptime(tt.now))
		})
	}
}
