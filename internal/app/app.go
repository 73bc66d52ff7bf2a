// Package app provides application initialization and dependency injection.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/http"
	"github.com/guttosm/embedded/internal/session"
)

// InitializeApp creates and wires all daemon dependencies. It returns the
// router and the session manager so the caller can hook container cleanup
// into server shutdown.
func InitializeApp(cfg config.Config) (*gin.Engine, session.Manager) {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Logging)

	// Initialize the container session manager
	manager := session.NewManager(cfg)

	// Initialize router components (handlers and configuration)
	routerComponents := InitializeRouter(manager, cfg)

	router := http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config)
	return router, manager
}
