// Package postgres starts disposable PostgreSQL containers for integration
// tests.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	// Registers the pq driver used by DB.
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/embedded/container"
	"github.com/guttosm/embedded/internal/retry"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "postgres:16-alpine"

	// Port is the in-container PostgreSQL port.
	Port = "5432/tcp"

	DefaultUser     = "postgres"
	DefaultPassword = "postgres"
	DefaultDatabase = "test"

	defaultStartupTimeout = 60 * time.Second

	readinessAttempts = 30
	readinessInterval = 200 * time.Millisecond
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("postgres: container is not running")

// Container is a started PostgreSQL node.
type Container struct {
	testcontainers.Container

	user     string
	password string
	database string
}

// Run starts a PostgreSQL container and blocks until the server accepts
// connections. The init-script machinery restarts postgres once during
// startup, so readiness is confirmed with pg_isready rather than the first
// "ready to accept connections" log line.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Env: map[string]string{
			"POSTGRES_USER":     cfg.user,
			"POSTGRES_PASSWORD": cfg.password,
			"POSTGRES_DB":       cfg.database,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting postgres container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	if err := awaitReady(ctx, started, cfg.user, cfg.database); err != nil {
		if termErr := started.Terminate(context.WithoutCancel(ctx)); termErr != nil {
			log.Warn().Err(termErr).Msg("Failed to terminate postgres container after readiness failure")
		}
		return nil, err
	}

	return &Container{
		Container: started,
		user:      cfg.user,
		password:  cfg.password,
		database:  cfg.database,
	}, nil
}

// awaitReady polls pg_isready inside the container until it exits cleanly.
func awaitReady(ctx context.Context, node container.Execer, user, database string) error {
	argv := []string{"pg_isready", "-U", user, "-d", database}

	opts := retry.Options{
		MaxRetries: readinessAttempts,
		Interval:   readinessInterval,
		Log: func(attempt int, _ error) {
			log.Debug().Int("attempt", attempt).Msg("Postgres not ready yet, retrying")
		},
	}

	last, err := retry.Do(ctx, opts, func(ctx context.Context) (container.ExecResult, error) {
		result, execErr := container.Exec(ctx, node, argv)
		if execErr != nil {
			return result, retry.Abort(execErr)
		}
		if !result.Ok() {
			return result, fmt.Errorf("pg_isready exited %d", result.ExitCode)
		}
		return result, nil
	})
	if retry.IsExhausted(err) {
		return fmt.Errorf("postgres never became ready: %s", last.Output)
	}
	if err != nil {
		return fmt.Errorf("await postgres readiness: %w", err)
	}
	return nil
}

// URL builds the connection URL for the configured database. Returns
// ErrNotRunning when the container is stopped.
func (c *Container) URL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return connectionURL(host, port, c.user, c.password, c.database), nil
}

func connectionURL(host string, port int, user, password, database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", user, password, host, port, database)
}

// DB opens a database handle against the container and verifies it with a
// ping. Closing the handle is the caller's responsibility.
func (c *Container) DB(ctx context.Context) (*sql.DB, error) {
	url, err := c.URL(ctx)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// Database returns the name of the provisioned database.
func (c *Container) Database() string {
	return c.database
}
