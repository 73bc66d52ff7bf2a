package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/domain/model"
)

// fakeRuntime stands in for a started container.
type fakeRuntime struct {
	mu         sync.Mutex
	logs       string
	logsErr    error
	termErr    error
	terminated int
}

func (f *fakeRuntime) Logs(_ context.Context) (io.ReadCloser, error) {
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return io.NopCloser(strings.NewReader(f.logs)), nil
}

func (f *fakeRuntime) Terminate(_ context.Context, _ ...testcontainers.TerminateOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated++
	return f.termErr
}

func (f *fakeRuntime) terminations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated
}

func newTestManager(maxContainers int) *ManagerImpl {
	return NewManager(config.Config{
		Session: config.SessionConfig{MaxContainers: maxContainers},
	})
}

func seedSession(m *ManagerImpl, id string, preset model.Preset, startedAt time.Time, handle runtime) {
	m.sessions[id] = &entry{
		info: model.ContainerInfo{
			ID:        id,
			Preset:    preset,
			StartedAt: startedAt,
			Endpoints: map[string]string{},
		},
		handle: handle,
	}
}

func TestManager_Start_UnknownPreset(t *testing.T) {
	m := newTestManager(0)

	_, err := m.Start(context.Background(), model.Preset("cassandra"), StartOptions{})

	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Empty(t, m.List())
}

func TestManager_Start_ContainerLimit(t *testing.T) {
	m := newTestManager(1)
	seedSession(m, "busy", model.PresetRedis, time.Now(), &fakeRuntime{})

	_, err := m.Start(context.Background(), model.PresetRedis, StartOptions{})

	assert.ErrorIs(t, err, ErrContainerLimit)
}

func TestManager_Get(t *testing.T) {
	m := newTestManager(0)
	seedSession(m, "abc", model.PresetPostgres, time.Now(), &fakeRuntime{})

	t.Run("returns tracked session", func(t *testing.T) {
		info, err := m.Get("abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", info.ID)
		assert.Equal(t, model.PresetPostgres, info.Preset)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := m.Get("missing")
		assert.ErrorIs(t, err, ErrContainerNotFound)
	})
}

func TestManager_List_OrderedByStartTime(t *testing.T) {
	m := newTestManager(0)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedSession(m, "third", model.PresetRedis, base.Add(2*time.Minute), &fakeRuntime{})
	seedSession(m, "first", model.PresetMongoDB, base, &fakeRuntime{})
	seedSession(m, "second", model.PresetKafka, base.Add(time.Minute), &fakeRuntime{})

	infos := m.List()

	require.Len(t, infos, 3)
	assert.Equal(t, "first", infos[0].ID)
	assert.Equal(t, "second", infos[1].ID)
	assert.Equal(t, "third", infos[2].ID)
}

func TestManager_Logs(t *testing.T) {
	m := newTestManager(0)
	seedSession(m, "abc", model.PresetRedis, time.Now(), &fakeRuntime{logs: "Ready to accept connections"})

	t.Run("reads container output", func(t *testing.T) {
		logs, err := m.Logs(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "Ready to accept connections", logs)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := m.Logs(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrContainerNotFound)
	})
}

func TestManager_Terminate(t *testing.T) {
	t.Run("stops and forgets the session", func(t *testing.T) {
		m := newTestManager(0)
		handle := &fakeRuntime{}
		seedSession(m, "abc", model.PresetRedis, time.Now(), handle)

		require.NoError(t, m.Terminate(context.Background(), "abc"))

		assert.Equal(t, 1, handle.terminations())
		_, err := m.Get("abc")
		assert.ErrorIs(t, err, ErrContainerNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		m := newTestManager(0)
		err := m.Terminate(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrContainerNotFound)
	})

	t.Run("forgets the session even when the engine errors", func(t *testing.T) {
		m := newTestManager(0)
		handle := &fakeRuntime{termErr: assert.AnError}
		seedSession(m, "abc", model.PresetRedis, time.Now(), handle)

		err := m.Terminate(context.Background(), "abc")

		assert.ErrorIs(t, err, assert.AnError)
		_, getErr := m.Get("abc")
		assert.ErrorIs(t, getErr, ErrContainerNotFound)
	})
}

func TestManager_TerminateAll(t *testing.T) {
	m := newTestManager(0)
	first := &fakeRuntime{}
	failing := &fakeRuntime{termErr: assert.AnError}
	last := &fakeRuntime{}
	seedSession(m, "a", model.PresetRedis, time.Now(), first)
	seedSession(m, "b", model.PresetMongoDB, time.Now(), failing)
	seedSession(m, "c", model.PresetKafka, time.Now(), last)

	m.TerminateAll(context.Background())

	assert.Empty(t, m.List())
	assert.Equal(t, 1, first.terminations())
	assert.Equal(t, 1, failing.terminations())
	assert.Equal(t, 1, last.terminations())
}

func TestManager_ReserveReleasesSlot(t *testing.T) {
	m := newTestManager(2)

	require.NoError(t, m.reserve())
	require.NoError(t, m.reserve())
	assert.ErrorIs(t, m.reserve(), ErrContainerLimit)

	m.release()
	assert.NoError(t, m.reserve())
}

func TestPickImage(t *testing.T) {
	tests := []struct {
		name       string
		override   string
		configured string
		fallback   string
		expected   string
	}{
		{
			name:     "request override wins",
			override: "mongo:4.4", configured: "mongo:5.0", fallback: "mongo:4.0.10",
			expected: "mongo:4.4",
		},
		{
			name:       "configured override beats default",
			configured: "mongo:5.0", fallback: "mongo:4.0.10",
			expected: "mongo:5.0",
		},
		{
			name:     "falls back to preset default",
			fallback: "mongo:4.0.10",
			expected: "mongo:4.0.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pickImage(tt.override, tt.configured, tt.fallback))
		})
	}
}
