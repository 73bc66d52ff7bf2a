// Package session manages the lifecycle of the containers the daemon starts
// on behalf of its clients.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"

	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/container"
	"github.com/guttosm/embedded/internal/domain/model"
	"github.com/guttosm/embedded/internal/metrics"
	"github.com/guttosm/embedded/kafka"
	"github.com/guttosm/embedded/keycloak"
	"github.com/guttosm/embedded/minio"
	"github.com/guttosm/embedded/mongodb"
	"github.com/guttosm/embedded/postgres"
	"github.com/guttosm/embedded/rabbitmq"
	"github.com/guttosm/embedded/redis"
	"github.com/guttosm/embedded/registry"
	"github.com/guttosm/embedded/toxiproxy"
	"github.com/guttosm/embedded/vault"
)

var (
	// ErrUnknownPreset is returned when a preset name is not supported.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrContainerLimit is returned when the configured container cap is reached.
	ErrContainerLimit = errors.New("container limit reached")
	// ErrContainerNotFound is returned when no session matches the given id.
	ErrContainerNotFound = errors.New("container not found")
)

// StartOptions carries per-request overrides applied on top of a preset's
// defaults. Empty fields keep the preset behavior.
type StartOptions struct {
	Image    string
	Database string
	Username string
	Password string
}

// Manager starts, tracks, and terminates preset containers.
type Manager interface {
	Start(ctx context.Context, preset model.Preset, opts StartOptions) (model.ContainerInfo, error)
	Get(id string) (model.ContainerInfo, error)
	List() []model.ContainerInfo
	Logs(ctx context.Context, id string) (string, error)
	Terminate(ctx context.Context, id string) error
	TerminateAll(ctx context.Context)
}

// runtime is the slice of a started container the manager holds on to.
type runtime interface {
	container.LogProvider
	Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error
}

// entry pairs session metadata with the running container behind it.
type entry struct {
	info   model.ContainerInfo
	handle runtime
}

func newEntry(preset model.Preset, image string, endpoints map[string]string, handle runtime) *entry {
	return &entry{
		info: model.ContainerInfo{
			Preset:    preset,
			Image:     image,
			Endpoints: endpoints,
		},
		handle: handle,
	}
}

// ManagerImpl implements Manager on top of the preset packages.
type ManagerImpl struct {
	presets       config.PresetsConfig
	maxContainers int
	startTimeout  time.Duration

	mu       sync.RWMutex
	sessions map[string]*entry
	starting int
}

// NewManager creates a container session manager from daemon configuration.
func NewManager(cfg config.Config) *ManagerImpl {
	return &ManagerImpl{
		presets:       cfg.Presets,
		maxContainers: cfg.Session.MaxContainers,
		startTimeout:  cfg.Session.StartTimeout,
		sessions:      make(map[string]*entry),
	}
}

// Start boots a preset container and registers it under a fresh session id.
func (m *ManagerImpl) Start(ctx context.Context, preset model.Preset, opts StartOptions) (model.ContainerInfo, error) {
	if !preset.Valid() {
		return model.ContainerInfo{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}

	if err := m.reserve(); err != nil {
		return model.ContainerInfo{}, err
	}
	defer m.release()

	if m.startTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.startTimeout)
		defer cancel()
	}

	start := time.Now()
	e, err := m.startPreset(ctx, preset, opts)
	if err != nil {
		metrics.RecordContainerStart(preset.String(), time.Since(start), "error")
		log.Error().Err(err).Str("preset", preset.String()).Msg("Container start failed")
		return model.ContainerInfo{}, fmt.Errorf("start %s: %w", preset, err)
	}

	e.info.ID = uuid.NewString()
	e.info.StartedAt = time.Now()

	m.mu.Lock()
	m.sessions[e.info.ID] = e
	m.mu.Unlock()

	metrics.RecordContainerStart(preset.String(), time.Since(start), "success")
	log.Info().
		Str("id", e.info.ID).
		Str("preset", preset.String()).
		Str("image", e.info.Image).
		Dur("took", time.Since(start)).
		Msg("Container started")

	return e.info, nil
}

// reserve claims a session slot so concurrent starts cannot exceed the cap.
func (m *ManagerImpl) reserve() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxContainers > 0 && len(m.sessions)+m.starting >= m.maxContainers {
		return ErrContainerLimit
	}
	m.starting++
	return nil
}

func (m *ManagerImpl) release() {
	m.mu.Lock()
	m.starting--
	m.mu.Unlock()
}

// Get returns the session with the given id.
func (m *ManagerImpl) Get(id string) (model.ContainerInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return model.ContainerInfo{}, fmt.Errorf("%w: %s", ErrContainerNotFound, id)
	}
	return e.info, nil
}

// List returns every tracked session ordered by start time.
func (m *ManagerImpl) List() []model.ContainerInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]model.ContainerInfo, 0, len(m.sessions))
	for _, e := range m.sessions {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Logs reads the combined stdout and stderr of the session's container.
func (m *ManagerImpl) Logs(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrContainerNotFound, id)
	}
	return container.ReadLogs(ctx, e.handle)
}

// Terminate stops the session's container and forgets it.
func (m *ManagerImpl) Terminate(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, id)
	}

	metrics.RecordContainerTermination(e.info.Preset.String())
	if err := e.handle.Terminate(ctx); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Container termination failed")
		return fmt.Errorf("terminate %s: %w", id, err)
	}

	log.Info().Str("id", id).Str("preset", e.info.Preset.String()).Msg("Container terminated")
	return nil
}

// TerminateAll stops every tracked container. Used during daemon shutdown.
func (m *ManagerImpl) TerminateAll(ctx context.Context) {
	m.mu.Lock()
	remaining := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for id, e := range remaining {
		metrics.RecordContainerTermination(e.info.Preset.String())
		if err := e.handle.Terminate(ctx); err != nil {
			log.Error().Err(err).Str("id", id).Msg("Container termination failed")
			continue
		}
		log.Info().Str("id", id).Str("preset", e.info.Preset.String()).Msg("Container terminated")
	}
}

func (m *ManagerImpl) startPreset(ctx context.Context, preset model.Preset, opts StartOptions) (*entry, error) {
	switch preset {
	case model.PresetMongoDB:
		return m.startMongoDB(ctx, opts)
	case model.PresetPostgres:
		return m.startPostgres(ctx, opts)
	case model.PresetRedis:
		return m.startRedis(ctx, opts)
	case model.PresetKafka:
		return m.startKafka(ctx, opts)
	case model.PresetRabbitMQ:
		return m.startRabbitMQ(ctx, opts)
	case model.PresetVault:
		return m.startVault(ctx, opts)
	case model.PresetKeycloak:
		return m.startKeycloak(ctx, opts)
	case model.PresetRegistry:
		return m.startRegistry(ctx, opts)
	case model.PresetToxiproxy:
		return m.startToxiproxy(ctx, opts)
	case model.PresetMinIO:
		return m.startMinIO(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
}

func (m *ManagerImpl) startMongoDB(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.MongoDBImage, mongodb.DefaultImage)
	runOpts := []mongodb.Option{mongodb.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, mongodb.WithAuth(opts.Username, opts.Password))
	}

	c, err := mongodb.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	url, err := c.ReplicaSetURL(ctx, opts.Database)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetMongoDB, image, map[string]string{"url": url}, c), nil
}

func (m *ManagerImpl) startPostgres(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.PostgresImage, postgres.DefaultImage)
	runOpts := []postgres.Option{postgres.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, postgres.WithCredentials(opts.Username, opts.Password))
	}
	if opts.Database != "" {
		runOpts = append(runOpts, postgres.WithDatabase(opts.Database))
	}

	c, err := postgres.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	url, err := c.URL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetPostgres, image, map[string]string{"url": url}, c), nil
}

func (m *ManagerImpl) startRedis(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.RedisImage, redis.DefaultImage)
	runOpts := []redis.Option{redis.WithImage(image)}
	if opts.Password != "" {
		runOpts = append(runOpts, redis.WithPassword(opts.Password))
	}

	c, err := redis.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	url, err := c.URL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	addr, err := c.Addr(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetRedis, image, map[string]string{"url": url, "addr": addr}, c), nil
}

func (m *ManagerImpl) startKafka(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.KafkaImage, kafka.DefaultImage)

	c, err := kafka.Run(ctx, kafka.WithImage(image))
	if err != nil {
		return nil, err
	}
	brokers, err := c.Brokers(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetKafka, image, map[string]string{"brokers": strings.Join(brokers, ",")}, c), nil
}

func (m *ManagerImpl) startRabbitMQ(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.RabbitMQImage, rabbitmq.DefaultImage)
	runOpts := []rabbitmq.Option{rabbitmq.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, rabbitmq.WithCredentials(opts.Username, opts.Password))
	}

	c, err := rabbitmq.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	amqpURL, err := c.AMQPURL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	mgmtURL, err := c.ManagementURL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetRabbitMQ, image, map[string]string{"amqp": amqpURL, "management": mgmtURL}, c), nil
}

func (m *ManagerImpl) startVault(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.VaultImage, vault.DefaultImage)
	runOpts := []vault.Option{vault.WithImage(image)}
	if opts.Password != "" {
		runOpts = append(runOpts, vault.WithRootToken(opts.Password))
	}

	c, err := vault.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	addr, err := c.Address(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetVault, image, map[string]string{"http": addr, "token": c.RootToken()}, c), nil
}

func (m *ManagerImpl) startKeycloak(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.KeycloakImage, keycloak.DefaultImage)
	runOpts := []keycloak.Option{keycloak.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, keycloak.WithAdmin(opts.Username, opts.Password))
	}

	c, err := keycloak.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	base, err := c.BaseURL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetKeycloak, image, map[string]string{"http": base}, c), nil
}

func (m *ManagerImpl) startRegistry(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.RegistryImage, registry.DefaultImage)
	runOpts := []registry.Option{registry.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, registry.WithBasicAuth(opts.Username, opts.Password))
	}

	c, err := registry.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	base, err := c.BaseURL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	hostPort, err := c.HostPort(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetRegistry, image, map[string]string{"http": base, "host": hostPort}, c), nil
}

func (m *ManagerImpl) startToxiproxy(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.ToxiproxyImage, toxiproxy.DefaultImage)

	c, err := toxiproxy.Run(ctx, toxiproxy.WithImage(image))
	if err != nil {
		return nil, err
	}
	control, err := c.ControlURL(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	proxy, err := c.ProxyAddr(ctx, toxiproxy.DefaultProxyPort)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetToxiproxy, image, map[string]string{"control": control, "proxy": proxy}, c), nil
}

func (m *ManagerImpl) startMinIO(ctx context.Context, opts StartOptions) (*entry, error) {
	image := pickImage(opts.Image, m.presets.MinIOImage, minio.DefaultImage)
	runOpts := []minio.Option{minio.WithImage(image)}
	if opts.Username != "" {
		runOpts = append(runOpts, minio.WithCredentials(opts.Username, opts.Password))
	}

	c, err := minio.Run(ctx, runOpts...)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.Endpoint(ctx)
	if err != nil {
		terminateQuietly(ctx, c)
		return nil, err
	}
	return newEntry(model.PresetMinIO, image, map[string]string{"s3": endpoint}, c), nil
}

// pickImage resolves the image to run: request override first, then the
// configured override, then the preset default.
func pickImage(override, configured, fallback string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func terminateQuietly(ctx context.Context, r runtime) {
	if err := r.Terminate(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Msg("Terminate after failed start")
	}
}
