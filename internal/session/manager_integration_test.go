//go:build integration

package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/domain/model"
)

func integrationManager(maxContainers int) *ManagerImpl {
	return NewManager(config.Config{
		Session: config.SessionConfig{
			MaxContainers: maxContainers,
			StartTimeout:  2 * time.Minute,
		},
	})
}

func TestManager_Integration_RedisLifecycle(t *testing.T) {
	ctx := context.Background()
	m := integrationManager(2)
	t.Cleanup(func() { m.TerminateAll(context.Background()) })

	info, err := m.Start(ctx, model.PresetRedis, StartOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, model.PresetRedis, info.Preset)
	assert.True(t, strings.HasPrefix(info.Endpoints["url"], "redis://"))
	assert.NotEmpty(t, info.Endpoints["addr"])
	assert.False(t, info.StartedAt.IsZero())

	listed := m.List()
	require.Len(t, listed, 1)
	assert.Equal(t, info.ID, listed[0].ID)

	logs, err := m.Logs(ctx, info.ID)
	require.NoError(t, err)
	assert.Contains(t, logs, "Ready to accept connections")

	require.NoError(t, m.Terminate(ctx, info.ID))
	_, err = m.Get(info.ID)
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestManager_Integration_ContainerLimit(t *testing.T) {
	ctx := context.Background()
	m := integrationManager(1)
	t.Cleanup(func() { m.TerminateAll(context.Background()) })

	info, err := m.Start(ctx, model.PresetRedis, StartOptions{})
	require.NoError(t, err)

	_, err = m.Start(ctx, model.PresetRedis, StartOptions{})
	assert.ErrorIs(t, err, ErrContainerLimit)

	require.NoError(t, m.Terminate(ctx, info.ID))

	second, err := m.Start(ctx, model.PresetRedis, StartOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, info.ID, second.ID)
}
