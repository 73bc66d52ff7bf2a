// Package app provides router configuration.
package app

import (
	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/http"
	"github.com/guttosm/embedded/internal/session"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(manager session.Manager, cfg config.Config) *RouterComponents {
	handler := http.NewHandler(manager)

	healthHandler := http.NewHealthHandler()
	// Readiness reports the Docker daemon; without it no preset can start.
	healthHandler.RegisterChecker("docker", http.DockerChecker{})

	routerCfg := http.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		EnableAuth:     cfg.Auth.Enabled,
		CORSOrigins:    cfg.Server.CORSOrigins,
		SwaggerUser:    cfg.Server.SwaggerUser,
		SwaggerPass:    cfg.Server.SwaggerPass,
		RequestTimeout: cfg.Server.RequestTimeout,
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
