//go:build integration

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/domain/dto"
	"github.com/guttosm/embedded/internal/domain/model"
	"github.com/guttosm/embedded/internal/session"
	"github.com/guttosm/embedded/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIntegrationDaemon(t *testing.T) *gin.Engine {
	t.Helper()
	testutil.RequireDocker(t)

	cfg := config.Config{}
	cfg.Session.MaxContainers = 2
	cfg.Session.StartTimeout = 2 * time.Minute

	manager := session.NewManager(cfg)
	t.Cleanup(func() {
		manager.TerminateAll(context.Background())
	})

	handler := NewHandler(manager)
	healthHandler := NewHealthHandler()
	healthHandler.RegisterChecker("docker", DockerChecker{})

	return NewRouter(handler, healthHandler, DefaultRouterConfig())
}

func TestIntegration_ContainerLifecycle(t *testing.T) {
	router := setupIntegrationDaemon(t)

	// Start a redis session through the API.
	req := httptest.NewRequest(http.MethodPost, "/api/containers/redis", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	info := decodeData[model.ContainerInfo](t, w)
	require.NotEmpty(t, info.ID)
	assert.Equal(t, model.PresetRedis, info.Preset)
	assert.True(t, strings.HasPrefix(info.Endpoints["url"], "redis://"))
	assert.NotEmpty(t, info.Endpoints["addr"])

	t.Run("session is listed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/containers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		infos := decodeData[[]model.ContainerInfo](t, w)
		require.Len(t, infos, 1)
		assert.Equal(t, info.ID, infos[0].ID)
	})

	t.Run("session is retrievable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/containers/"+info.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		got := decodeData[model.ContainerInfo](t, w)
		assert.Equal(t, info.Endpoints, got.Endpoints)
	})

	t.Run("logs are served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/containers/"+info.ID+"/logs", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		logs := decodeData[dto.LogsResponse](t, w)
		assert.Contains(t, logs.Logs, "Ready to accept connections")
	})

	t.Run("terminate removes the session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/containers/"+info.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/containers/"+info.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIntegration_TerminateAll(t *testing.T) {
	router := setupIntegrationDaemon(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/containers/redis", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/containers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/containers", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	infos := decodeData[[]model.ContainerInfo](t, w)
	assert.Empty(t, infos)
}

func TestIntegration_Readiness(t *testing.T) {
	router := setupIntegrationDaemon(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docker")
}
