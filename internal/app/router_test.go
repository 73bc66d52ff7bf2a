//go:build !integration

package app

import (
	"testing"
	"time"

	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/mocks"
	"github.com/stretchr/testify/assert"
)

func TestInitializeRouter(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		validate func(*testing.T, *RouterComponents)
	}{
		{
			name: "creates router components with defaults",
			cfg: config.Config{
				Server: config.ServerConfig{
					RequestTimeout: 30 * time.Second,
				},
			},
			validate: func(t *testing.T, components *RouterComponents) {
				assert.NotNil(t, components)
				assert.NotNil(t, components.Handler)
				assert.NotNil(t, components.HealthHandler)
				assert.False(t, components.Config.EnableAuth)
				assert.Equal(t, 30*time.Second, components.Config.RequestTimeout)
			},
		},
		{
			name: "creates router with auth enabled",
			cfg: config.Config{
				Auth: config.AuthConfig{
					Enabled: true,
					APIKeys: map[string]bool{"test-key": true},
				},
			},
			validate: func(t *testing.T, components *RouterComponents) {
				assert.NotNil(t, components)
				assert.True(t, components.Config.EnableAuth)
				assert.Equal(t, map[string]bool{"test-key": true}, components.Config.APIKeys)
			},
		},
		{
			name: "passes swagger credentials through",
			cfg: config.Config{
				Server: config.ServerConfig{
					SwaggerUser: "admin",
					SwaggerPass: "secret",
					CORSOrigins: []string{"http://localhost:3000"},
				},
			},
			validate: func(t *testing.T, components *RouterComponents) {
				assert.Equal(t, "admin", components.Config.SwaggerUser)
				assert.Equal(t, "secret", components.Config.SwaggerPass)
				assert.Equal(t, []string{"http://localhost:3000"}, components.Config.CORSOrigins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := InitializeRouter(new(mocks.MockManager), tt.cfg)
			if tt.validate != nil {
				tt.validate(t, components)
			}
		})
	}
}
