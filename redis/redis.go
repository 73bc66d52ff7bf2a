// Package redis starts disposable Redis containers for integration tests.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/embedded/container"
	"github.com/guttosm/embedded/internal/retry"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "redis:7-alpine"

	// Port is the in-container Redis port.
	Port = "6379/tcp"

	defaultStartupTimeout = 30 * time.Second

	pingAttempts = 30
	pingInterval = 100 * time.Millisecond
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("redis: container is not running")

// Container is a started Redis node.
type Container struct {
	testcontainers.Container

	password string
}

// Run starts a Redis container and confirms it answers PING before
// returning.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(cfg.startupTimeout),
	}
	if cfg.password != "" {
		req.Cmd = []string{"redis-server", "--requirepass", cfg.password}
	}

	log.Info().Str("image", cfg.image).Msg("Starting redis container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	c := &Container{Container: started, password: cfg.password}
	if err := c.awaitPong(ctx); err != nil {
		if termErr := started.Terminate(context.WithoutCancel(ctx)); termErr != nil {
			log.Warn().Err(termErr).Msg("Failed to terminate redis container after readiness failure")
		}
		return nil, err
	}

	return c, nil
}

// awaitPong polls redis-cli ping inside the container until it answers PONG.
func (c *Container) awaitPong(ctx context.Context) error {
	argv := pingCommand(c.password)

	opts := retry.Options{
		MaxRetries: pingAttempts,
		Interval:   pingInterval,
		Log: func(attempt int, _ error) {
			log.Debug().Int("attempt", attempt).Msg("Redis not answering yet, retrying")
		},
	}

	last, err := retry.Do(ctx, opts, func(ctx context.Context) (container.ExecResult, error) {
		result, execErr := container.Exec(ctx, c, argv)
		if execErr != nil {
			return result, retry.Abort(execErr)
		}
		if !result.Ok() || !strings.Contains(result.Output, "PONG") {
			return result, fmt.Errorf("ping answered %q", strings.TrimSpace(result.Output))
		}
		return result, nil
	})
	if retry.IsExhausted(err) {
		return fmt.Errorf("redis never answered ping: %s", strings.TrimSpace(last.Output))
	}
	if err != nil {
		return fmt.Errorf("await redis readiness: %w", err)
	}
	return nil
}

// pingCommand builds the in-container readiness probe.
func pingCommand(password string) []string {
	if password != "" {
		return []string{"redis-cli", "-a", password, "ping"}
	}
	return []string{"redis-cli", "ping"}
}

// Addr returns the host:port address of the node. Returns ErrNotRunning when
// the container is stopped.
func (c *Container) Addr(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", host, port), nil
}

// URL returns the redis:// connection URL, embedding the password when the
// node requires one.
func (c *Container) URL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return connectionURL(host, port, c.password), nil
}

func connectionURL(host string, port int, password string) string {
	if password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d", password, host, port)
	}
	return fmt.Sprintf("redis://%s:%d", host, port)
}
