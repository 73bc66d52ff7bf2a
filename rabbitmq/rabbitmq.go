// Package rabbitmq starts disposable RabbitMQ containers for integration
// tests. The management plugin is enabled so tests can drive the HTTP API as
// well as AMQP.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
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
	DefaultImage = "rabbitmq:3.13-management-alpine"

	// AMQPPort is the in-container AMQP port.
	AMQPPort = "5672/tcp"

	// ManagementPort is the in-container HTTP management port.
	ManagementPort = "15672/tcp"

	DefaultUser     = "guest"
	DefaultPassword = "guest"

	defaultStartupTimeout = 90 * time.Second

	pingAttempts = 30
	pingInterval = 500 * time.Millisecond
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("rabbitmq: container is not running")

// Container is a started RabbitMQ node.
type Container struct {
	testcontainers.Container

	user     string
	password string
}

// Run starts a RabbitMQ container and blocks until the broker answers its
// own diagnostics ping. The startup log line alone is not enough: the epmd
// registration can lag it slightly.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{AMQPPort, ManagementPort},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": cfg.user,
			"RABBITMQ_DEFAULT_PASS": cfg.password,
		},
		WaitingFor: wait.ForLog("Server startup complete").
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting rabbitmq container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start rabbitmq container: %w", err)
	}

	if err := awaitPing(ctx, started); err != nil {
		if termErr := started.Terminate(context.WithoutCancel(ctx)); termErr != nil {
			log.Warn().Err(termErr).Msg("Failed to terminate rabbitmq container after readiness failure")
		}
		return nil, err
	}

	return &Container{Container: started, user: cfg.user, password: cfg.password}, nil
}

// awaitPing polls rabbitmq-diagnostics inside the container until the broker
// answers.
func awaitPing(ctx context.Context, node container.Execer) error {
	argv := []string{"rabbitmq-diagnostics", "-q", "ping"}

	opts := retry.Options{
		MaxRetries: pingAttempts,
		Interval:   pingInterval,
		Log: func(attempt int, _ error) {
			log.Debug().Int("attempt", attempt).Msg("RabbitMQ not answering yet, retrying")
		},
	}

	last, err := retry.Do(ctx, opts, func(ctx context.Context) (container.ExecResult, error) {
		result, execErr := container.Exec(ctx, node, argv)
		if execErr != nil {
			return result, retry.Abort(execErr)
		}
		if !result.Ok() {
			return result, fmt.Errorf("diagnostics ping exited %d", result.ExitCode)
		}
		return result, nil
	})
	if retry.IsExhausted(err) {
		return fmt.Errorf("rabbitmq never answered ping: %s", last.Output)
	}
	if err != nil {
		return fmt.Errorf("await rabbitmq readiness: %w", err)
	}
	return nil
}

// AMQPURL builds the amqp:// URL for the default vhost. Returns
// ErrNotRunning when the container is stopped.
func (c *Container) AMQPURL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(AMQPPort))
	if err != nil {
		return "", err
	}

	return amqpURL(host, port, c.user, c.password), nil
}

func amqpURL(host string, port int, user, password string) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, host, port)
}

// ManagementURL builds the base URL of the HTTP management API.
func (c *Container) ManagementURL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(ManagementPort))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, port), nil
}

// Credentials returns the broker's configured user and password.
func (c *Container) Credentials() (user, password string) {
	return c.user, c.password
}
