package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/embedded/internal/middleware"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// ContainerRoutes handles container session route registration.
type ContainerRoutes struct {
	handler *Handler
}

// NewContainerRoutes creates a new ContainerRoutes instance.
func NewContainerRoutes(handler *Handler) *ContainerRoutes {
	return &ContainerRoutes{handler: handler}
}

// RegisterRoutes registers container routes to the given router group.
// Start requests run without the request timeout; a container boot is bounded
// by the session manager's own start timeout instead.
func (r *ContainerRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	rg.POST("/containers/:preset", r.handler.StartContainer)

	read := rg.Group("")
	if cfg.RequestTimeout > 0 {
		read.Use(middleware.TimeoutWithDuration(cfg.RequestTimeout))
	}
	read.GET("/presets", r.handler.ListPresets)
	read.GET("/containers", r.handler.ListContainers)
	read.GET("/containers/:id", r.handler.GetContainer)
	read.GET("/containers/:id/logs", r.handler.ContainerLogs)
	read.DELETE("/containers", r.handler.TerminateAllContainers)
	read.DELETE("/containers/:id", r.handler.TerminateContainer)
}

// GetHandler returns the underlying container handler.
func (r *ContainerRoutes) GetHandler() *Handler {
	return r.handler
}
