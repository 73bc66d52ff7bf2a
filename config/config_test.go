package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
		assert.Equal(t, 20, cfg.Session.MaxContainers)
		assert.Equal(t, 5*time.Minute, cfg.Session.StartTimeout)
		assert.False(t, cfg.Auth.Enabled)
		assert.Empty(t, cfg.Presets.MongoDBImage)
	})

	t.Run("loads values from environment", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("PORT", "9090")
		_ = os.Setenv("REQUEST_TIMEOUT", "45s")
		_ = os.Setenv("MAX_CONTAINERS", "5")
		_ = os.Setenv("CONTAINER_START_TIMEOUT", "90s")
		_ = os.Setenv("AUTH_ENABLED", "true")
		_ = os.Setenv("API_KEYS", "key1,key2")
		_ = os.Setenv("MONGODB_IMAGE", "mongo:4.4")
		_ = os.Setenv("POSTGRES_IMAGE", "postgres:15-alpine")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
		assert.Equal(t, 5, cfg.Session.MaxContainers)
		assert.Equal(t, 90*time.Second, cfg.Session.StartTimeout)
		assert.True(t, cfg.Auth.Enabled)
		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
		assert.Equal(t, "mongo:4.4", cfg.Presets.MongoDBImage)
		assert.Equal(t, "postgres:15-alpine", cfg.Presets.PostgresImage)
	})

	t.Run("handles invalid values gracefully", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("MAX_CONTAINERS", "invalid")
		_ = os.Setenv("AUTH_ENABLED", "invalid")
		_ = os.Setenv("REQUEST_TIMEOUT", "invalid")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, 20, cfg.Session.MaxContainers)
		assert.False(t, cfg.Auth.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	})

	t.Run("parses API keys with whitespace", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("API_KEYS", " key1 , key2 , key3 ")
		defer os.Clearenv()

		cfg := Load()

		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
		assert.True(t, cfg.Auth.APIKeys["key3"])
	})

	t.Run("returns nil for empty API keys", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Nil(t, cfg.Auth.APIKeys)
	})

	t.Run("appends CORS origins to defaults", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("CORS_ORIGINS", "https://ci.example.com, https://dev.example.com")
		defer os.Clearenv()

		cfg := Load()

		assert.Contains(t, cfg.Server.CORSOrigins, "http://localhost:3000")
		assert.Contains(t, cfg.Server.CORSOrigins, "https://ci.example.com")
		assert.Contains(t, cfg.Server.CORSOrigins, "https://dev.example.com")
	})
}
