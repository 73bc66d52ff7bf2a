// Package mongodb starts disposable MongoDB containers for integration
// tests. Every node is launched in replica set mode and bootstrapped into a
// usable single node replica set before Run returns, which is what the
// official driver requires for transactions and change streams.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured. It is
	// pinned to a release that still ships the legacy mongo shell; the
	// bootstrap protocol depends on it.
	DefaultImage = "mongo:4.0.10"

	// DefaultDatabase is used when a connection URL is requested without an
	// explicit database name.
	DefaultDatabase = "test"

	// Port is the in-container MongoDB port.
	Port = "27017/tcp"

	defaultStartupTimeout = 60 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("mongodb: container is not running")

// Container is a started MongoDB node that has been bootstrapped into a
// single node replica set.
type Container struct {
	testcontainers.Container

	creds Credentials
}

// Run starts a MongoDB container, waits for mongod to accept connections,
// and bootstraps it into a single node replica set. On bootstrap failure the
// container is terminated before the error is returned, so a non-nil
// Container is always usable.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Cmd:          []string{"--replSet", ReplicaSetName, "--bind_ip_all"},
		WaitingFor: wait.ForLog("(?i).*waiting for connections.*").
			AsRegexp().
			WithStartupTimeout(cfg.startupTimeout),
	}
	if cfg.creds.Enabled {
		req.Env = map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": cfg.creds.Username,
			"MONGO_INITDB_ROOT_PASSWORD": cfg.creds.Password,
		}
	}

	log.Info().Str("image", cfg.image).Msg("Starting mongodb container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start mongodb container: %w", err)
	}

	if err := NewBootstrapper(cfg.bootstrap).Bootstrap(ctx, started, cfg.creds); err != nil {
		if termErr := started.Terminate(context.WithoutCancel(ctx)); termErr != nil {
			log.Warn().Err(termErr).Msg("Failed to terminate mongodb container after bootstrap failure")
		}
		return nil, err
	}

	return &Container{Container: started, creds: cfg.creds}, nil
}

// ReplicaSetURL builds the connection URL for the given database, falling
// back to DefaultDatabase when the name is empty. Credentials are embedded
// when the node was started with authentication. Returns ErrNotRunning when
// the container is stopped.
func (c *Container) ReplicaSetURL(ctx context.Context, database string) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return replicaSetURL(host, port, c.creds, database), nil
}

// replicaSetURL is the pure URL builder behind ReplicaSetURL.
func replicaSetURL(host string, port int, creds Credentials, database string) string {
	if database == "" {
		database = DefaultDatabase
	}
	if creds.Enabled {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s", creds.Username, creds.Password, host, port, database)
	}
	return fmt.Sprintf("mongodb://%s:%d/%s", host, port, database)
}

// Client opens a driver client against the node and verifies it with a
// primary ping. The connection is direct: the replica set config advertises
// the container-internal hostname, which does not resolve from the host
// network. Disconnecting the client is the caller's responsibility.
func (c *Container) Client(ctx context.Context) (*mongo.Client, error) {
	if !c.IsRunning() {
		return nil, ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().
		ApplyURI(fmt.Sprintf("mongodb://%s:%d", host, port)).
		SetDirect(true).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)
	if c.creds.Enabled {
		clientOpts.SetAuth(options.Credential{
			Username:   c.creds.Username,
			Password:   c.creds.Password,
			AuthSource: adminDatabase,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb primary: %w", err)
	}

	return client, nil
}

// Credentials returns the root credentials the node was started with. The
// zero value means authentication is disabled.
func (c *Container) Credentials() Credentials {
	return c.creds
}
