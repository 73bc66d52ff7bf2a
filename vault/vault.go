// Package vault starts disposable HashiCorp Vault containers in dev mode for
// integration tests, with helpers for seeding and reading KV v2 secrets.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tidwall/gjson"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "hashicorp/vault:1.15"

	// Port is the in-container Vault API port.
	Port = "8200/tcp"

	// DefaultRootToken is the dev-mode root token when none is configured.
	DefaultRootToken = "root-token"

	// DefaultMount is the KV v2 mount dev mode enables out of the box.
	DefaultMount = "secret"

	defaultStartupTimeout = 60 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("vault: container is not running")

// Container is a started Vault dev server.
type Container struct {
	testcontainers.Container

	token string
}

// Run starts a Vault dev server and waits until its health endpoint reports
// an initialized, unsealed node.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Env: map[string]string{
			"VAULT_DEV_ROOT_TOKEN_ID":  cfg.token,
			"VAULT_DEV_LISTEN_ADDRESS": "0.0.0.0:8200",
		},
		WaitingFor: wait.ForHTTP("/v1/sys/health").
			WithPort(Port).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting vault container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start vault container: %w", err)
	}

	return &Container{Container: started, token: cfg.token}, nil
}

// Address returns the base URL of the Vault API. Returns ErrNotRunning when
// the container is stopped.
func (c *Container) Address(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, port), nil
}

// RootToken returns the dev-mode root token.
func (c *Container) RootToken() string {
	return c.token
}

// Client builds a KV client authenticated with the root token.
func (c *Container) Client(ctx context.Context) (*Client, error) {
	address, err := c.Address(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(address, c.token), nil
}

// Client talks to Vault's KV v2 HTTP API.
type Client struct {
	http  *resty.Client
	token string
}

// NewClient creates a KV client for the Vault server at address.
func NewClient(address, token string) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(address).SetTimeout(10 * time.Second),
		token: token,
	}
}

// WriteSecret stores data under the given path in the default KV v2 mount.
func (c *Client) WriteSecret(ctx context.Context, path string, data map[string]any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Vault-Token", c.token).
		SetBody(map[string]any{"data": data}).
		Post(fmt.Sprintf("/v1/%s/data/%s", DefaultMount, path))
	if err != nil {
		return fmt.Errorf("write secret %q: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("write secret %q: vault answered %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

// ReadSecret fetches the secret stored under the given path. Missing paths
// yield an error; missing keys simply do not appear in the result.
func (c *Client) ReadSecret(ctx context.Context, path string) (map[string]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Vault-Token", c.token).
		Get(fmt.Sprintf("/v1/%s/data/%s", DefaultMount, path))
	if err != nil {
		return nil, fmt.Errorf("read secret %q: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("read secret %q: vault answered %d: %s", path, resp.StatusCode(), resp.String())
	}

	return parseSecretData(resp.Body()), nil
}

// parseSecretData extracts the key/value pairs from a KV v2 read response.
func parseSecretData(body []byte) map[string]string {
	data := gjson.GetBytes(body, "data.data")
	secrets := make(map[string]string, len(data.Map()))
	data.ForEach(func(key, value gjson.Result) bool {
		secrets[key.String()] = value.String()
		return true
	})
	return secrets
}
