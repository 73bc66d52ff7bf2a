// Package config provides configuration management for the embedded daemon.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete daemon configuration.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Logging LoggingConfig
	Session SessionConfig
	Presets PresetsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	CORSOrigins    []string
	SwaggerUser    string
	SwaggerPass    string
}

// AuthConfig holds API authentication configuration.
type AuthConfig struct {
	Enabled bool
	APIKeys map[string]bool
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// SessionConfig bounds the container sessions the daemon manages.
type SessionConfig struct {
	// MaxContainers caps concurrently running containers; 0 means unlimited.
	MaxContainers int
	// StartTimeout bounds a single container start, bootstrap included.
	StartTimeout time.Duration
}

// PresetsConfig carries per-preset image overrides. Empty values fall back to
// each preset's pinned default.
type PresetsConfig struct {
	MongoDBImage   string
	PostgresImage  string
	RedisImage     string
	KafkaImage     string
	RabbitMQImage  string
	VaultImage     string
	KeycloakImage  string
	RegistryImage  string
	ToxiproxyImage string
	MinIOImage     string
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			CORSOrigins:    parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser:    getEnv("SWAGGER_USER", ""),
			SwaggerPass:    getEnv("SWAGGER_PASS", ""),
		},
		Auth: AuthConfig{
			Enabled: getEnvBool("AUTH_ENABLED", false),
			APIKeys: parseAPIKeys(os.Getenv("API_KEYS")),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Session: SessionConfig{
			MaxContainers: getEnvInt("MAX_CONTAINERS", 20),
			StartTimeout:  getEnvDuration("CONTAINER_START_TIMEOUT", 5*time.Minute),
		},
		Presets: PresetsConfig{
			MongoDBImage:   getEnv("MONGODB_IMAGE", ""),
			PostgresImage:  getEnv("POSTGRES_IMAGE", ""),
			RedisImage:     getEnv("REDIS_IMAGE", ""),
			KafkaImage:     getEnv("KAFKA_IMAGE", ""),
			RabbitMQImage:  getEnv("RABBITMQ_IMAGE", ""),
			VaultImage:     getEnv("VAULT_IMAGE", ""),
			KeycloakImage:  getEnv("KEYCLOAK_IMAGE", ""),
			RegistryImage:  getEnv("REGISTRY_IMAGE", ""),
			ToxiproxyImage: getEnv("TOXIPROXY_IMAGE", ""),
			MinIOImage:     getEnv("MINIO_IMAGE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseAPIKeys(s string) map[string]bool {
	if s == "" {
		return nil
	}
	keys := strings.Split(s, ",")
	result := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			result[k] = true
		}
	}
	return result
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
