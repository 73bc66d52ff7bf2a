package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/embedded/internal/domain/dto"
	"github.com/guttosm/embedded/internal/domain/model"
	"github.com/guttosm/embedded/internal/i18n"
	"github.com/guttosm/embedded/internal/session"
)

// Handler provides HTTP handlers for the container session routes.
type Handler struct {
	manager session.Manager
}

// NewHandler creates a new Handler instance.
func NewHandler(manager session.Manager) *Handler {
	return &Handler{manager: manager}
}

// StartContainer handles POST /api/containers/:preset requests.
//
// @Summary      Start a preset container
// @Description  Boots a disposable container from one of the supported presets and returns its connection endpoints once it is ready. The MongoDB preset comes up as an initialized single node replica set; the other presets wait for their service to accept connections. The request body is optional and overrides the preset defaults.
// @Tags         Containers
// @Accept       json
// @Produce      json
// @Param        preset path string true "Preset name" Enums(mongodb, postgres, redis, kafka, rabbitmq, vault, keycloak, registry, toxiproxy, minio)
// @Param        request body dto.StartContainerRequest false "Start overrides"
// @Success      201 {object} dto.SuccessResponse "Container started"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Unknown preset"
// @Failure      409 {object} dto.ErrorResponse "Container limit reached"
// @Failure      500 {object} dto.ErrorResponse "Container failed to start"
// @Failure      504 {object} dto.ErrorResponse "Container start timed out"
// @Security     ApiKeyAuth
// @Router       /api/containers/{preset} [post]
func (h *Handler) StartContainer(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var req dto.StartContainerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
			return
		}
		if err := req.Validate(); err != nil {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyValidationCredentials, err)
			return
		}
	}

	preset := model.Preset(c.Param("preset"))
	info, err := h.manager.Start(c.Request.Context(), preset, session.StartOptions{
		Image:    req.Image,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnknownPreset):
			builder.Error(http.StatusNotFound, i18n.ErrKeyUnknownPreset, err)
		case errors.Is(err, session.ErrContainerLimit):
			builder.Error(http.StatusConflict, i18n.ErrKeyContainerLimit, err)
		case errors.Is(err, context.DeadlineExceeded):
			builder.Error(http.StatusGatewayTimeout, i18n.ErrKeyTimeout, err)
		default:
			builder.Error(http.StatusInternalServerError, i18n.ErrKeyContainerStartFailed, err)
		}
		return
	}

	builder.SuccessCreated(info)
}

// ListContainers handles GET /api/containers requests.
//
// @Summary      List running containers
// @Description  Returns every container session the daemon currently tracks, ordered by start time.
// @Tags         Containers
// @Produce      json
// @Success      200 {object} dto.SuccessResponse "Tracked container sessions"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/containers [get]
func (h *Handler) ListContainers(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(h.manager.List())
}

// GetContainer handles GET /api/containers/:id requests.
//
// @Summary      Get a container session
// @Description  Returns the session with the given id, including its connection endpoints.
// @Tags         Containers
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse "Container session"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Container not found"
// @Security     ApiKeyAuth
// @Router       /api/containers/{id} [get]
func (h *Handler) GetContainer(c *gin.Context) {
	builder := NewResponseBuilder(c)

	info, err := h.manager.Get(c.Param("id"))
	if err != nil {
		builder.Error(http.StatusNotFound, i18n.ErrKeyContainerNotFound, err)
		return
	}

	builder.SuccessOK(info)
}

// ContainerLogs handles GET /api/containers/:id/logs requests.
//
// @Summary      Read container logs
// @Description  Returns the combined stdout and stderr output of the session's container.
// @Tags         Containers
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse "Container log output"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Container not found"
// @Failure      500 {object} dto.ErrorResponse "Logs could not be read"
// @Security     ApiKeyAuth
// @Router       /api/containers/{id}/logs [get]
func (h *Handler) ContainerLogs(c *gin.Context) {
	builder := NewResponseBuilder(c)
	id := c.Param("id")

	logs, err := h.manager.Logs(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrContainerNotFound) {
			builder.Error(http.StatusNotFound, i18n.ErrKeyContainerNotFound, err)
			return
		}
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyContainerLogsFailed, err)
		return
	}

	builder.SuccessOK(dto.LogsResponse{ID: id, Logs: logs})
}

// TerminateContainer handles DELETE /api/containers/:id requests.
//
// @Summary      Terminate a container
// @Description  Stops the session's container and removes it from the daemon's tracking.
// @Tags         Containers
// @Produce      json
// @Param        id path string true "Session id"
// @Success      204 "Container terminated"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Container not found"
// @Failure      500 {object} dto.ErrorResponse "Termination failed"
// @Security     ApiKeyAuth
// @Router       /api/containers/{id} [delete]
func (h *Handler) TerminateContainer(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if err := h.manager.Terminate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, session.ErrContainerNotFound) {
			builder.Error(http.StatusNotFound, i18n.ErrKeyContainerNotFound, err)
			return
		}
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyContainerTerminateFailed, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TerminateAllContainers handles DELETE /api/containers requests.
//
// @Summary      Terminate all containers
// @Description  Stops every tracked container. Sessions whose containers fail to stop are still removed from tracking.
// @Tags         Containers
// @Produce      json
// @Success      204 "All containers terminated"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/containers [delete]
func (h *Handler) TerminateAllContainers(c *gin.Context) {
	h.manager.TerminateAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// ListPresets handles GET /api/presets requests.
//
// @Summary      List supported presets
// @Description  Returns the names of every preset the daemon can start.
// @Tags         Containers
// @Produce      json
// @Success      200 {object} dto.SuccessResponse "Supported presets"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/presets [get]
func (h *Handler) ListPresets(c *gin.Context) {
	presets := model.AllPresets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.String())
	}
	NewResponseBuilder(c).SuccessOK(dto.PresetsResponse{Presets: names})
}
