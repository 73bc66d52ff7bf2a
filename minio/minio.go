// Package minio starts disposable MinIO containers for S3 integration tests.
package minio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "minio/minio:RELEASE.2024-01-16T16-07-38Z"

	// Port is the in-container S3 API port.
	Port = "9000/tcp"

	DefaultRootUser     = "minioadmin"
	DefaultRootPassword = "minioadmin"

	// Region is what the S3 client pretends to be in; MinIO accepts any.
	Region = "us-east-1"

	defaultStartupTimeout = 30 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("minio: container is not running")

// Container is a started MinIO server.
type Container struct {
	testcontainers.Container

	user     string
	password string
}

// Run starts a MinIO container and waits for its liveness endpoint.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     cfg.user,
			"MINIO_ROOT_PASSWORD": cfg.password,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort(Port).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting minio container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start minio container: %w", err)
	}

	return &Container{Container: started, user: cfg.user, password: cfg.password}, nil
}

// Endpoint returns the base URL of the S3 API. Returns ErrNotRunning when
// the container is stopped.
func (c *Container) Endpoint(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, port), nil
}

// S3Client builds an S3 client bound to the container. Path-style addressing
// is required: bucket subdomains do not resolve for container endpoints.
func (c *Container) S3Client(ctx context.Context) (*s3.Client, error) {
	endpoint, err := c.Endpoint(ctx)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.user, c.password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return client, nil
}

// CreateBucket provisions a bucket.
func (c *Container) CreateBucket(ctx context.Context, name string) error {
	client, err := c.S3Client(ctx)
	if err != nil {
		return err
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)}); err != nil {
		return fmt.Errorf("create bucket %q: %w", name, err)
	}

	log.Debug().Str("bucket", name).Msg("Created minio bucket")
	return nil
}

// Credentials returns the root user and password.
func (c *Container) Credentials() (user, password string) {
	return c.user, c.password
}
