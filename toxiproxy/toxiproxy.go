// Package toxiproxy starts disposable Toxiproxy containers for network
// fault-injection tests. Proxies are created at runtime through the HTTP
// control API, so the ports they will listen on must be declared up front.
package toxiproxy

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
	DefaultImage = "ghcr.io/shopify/toxiproxy:2.12.0"

	// ControlPort is the in-container HTTP control API port.
	ControlPort = "8474/tcp"

	// DefaultProxyPort is the single proxy port exposed when no extra ports
	// are configured.
	DefaultProxyPort = "8666/tcp"

	defaultStartupTimeout = 30 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("toxiproxy: container is not running")

// Container is a started Toxiproxy instance.
type Container struct {
	testcontainers.Container
}

// Run starts a Toxiproxy container and waits for its control API to listen.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: append([]string{ControlPort}, cfg.proxyPorts...),
		WaitingFor: wait.ForListeningPort(ControlPort).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting toxiproxy container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start toxiproxy container: %w", err)
	}

	return &Container{Container: started}, nil
}

// ControlURL returns the base URL of the control API. Returns ErrNotRunning
// when the container is stopped.
func (c *Container) ControlURL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(ControlPort))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, port), nil
}

// ProxyAddr resolves the host-side address of an in-container proxy port.
// The port must have been exposed at startup.
func (c *Container) ProxyAddr(ctx context.Context, proxyPort string) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(proxyPort))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", host, port), nil
}

// Client builds a control API client.
func (c *Container) Client(ctx context.Context) (*Client, error) {
	controlURL, err := c.ControlURL(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(controlURL), nil
}

// Client drives the Toxiproxy HTTP control API.
type Client struct {
	http *resty.Client
}

// NewClient creates a control client for the Toxiproxy instance at
// controlURL.
func NewClient(controlURL string) *Client {
	return &Client{http: resty.New().SetBaseURL(controlURL).SetTimeout(10 * time.Second)}
}

// CreateProxy registers a proxy listening on listen (an in-container
// address, e.g. "0.0.0.0:8666") that forwards to upstream.
func (c *Client) CreateProxy(ctx context.Context, name, listen, upstream string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"name":     name,
			"listen":   listen,
			"upstream": upstream,
			"enabled":  true,
		}).
		Post("/proxies")
	if err != nil {
		return fmt.Errorf("create proxy %q: %w", name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("create proxy %q: toxiproxy answered %d: %s", name, resp.StatusCode(), resp.String())
	}

	log.Debug().Str("proxy", name).Str("upstream", upstream).Msg("Created toxiproxy proxy")
	return nil
}

// Proxies lists the names of all registered proxies.
func (c *Client) Proxies(ctx context.Context) ([]string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/proxies")
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list proxies: toxiproxy answered %d", resp.StatusCode())
	}

	var names []string
	gjson.ParseBytes(resp.Body()).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names, nil
}

// AddLatency attaches a downstream latency toxic to the proxy.
func (c *Client) AddLatency(ctx context.Context, proxy, toxic string, latency, jitter time.Duration) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"name":   toxic,
			"type":   "latency",
			"stream": "downstream",
			"attributes": map[string]any{
				"latency": latency.Milliseconds(),
				"jitter":  jitter.Milliseconds(),
			},
		}).
		Post(fmt.Sprintf("/proxies/%s/toxics", proxy))
	if err != nil {
		return fmt.Errorf("add latency toxic to %q: %w", proxy, err)
	}
	if resp.IsError() {
		return fmt.Errorf("add latency toxic to %q: toxiproxy answered %d: %s", proxy, resp.StatusCode(), resp.String())
	}
	return nil
}

// RemoveToxic detaches a toxic from the proxy.
func (c *Client) RemoveToxic(ctx context.Context, proxy, toxic string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/proxies/%s/toxics/%s", proxy, toxic))
	if err != nil {
		return fmt.Errorf("remove toxic %q from %q: %w", toxic, proxy, err)
	}
	if resp.IsError() {
		return fmt.Errorf("remove toxic %q from %q: toxiproxy answered %d", toxic, proxy, resp.StatusCode())
	}
	return nil
}

// SetEnabled flips a proxy on or off. Disabling drops all open connections.
func (c *Client) SetEnabled(ctx context.Context, proxy string, enabled bool) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"enabled": enabled}).
		Post(fmt.Sprintf("/proxies/%s", proxy))
	if err != nil {
		return fmt.Errorf("toggle proxy %q: %w", proxy, err)
	}
	if resp.IsError() {
		return fmt.Errorf("toggle proxy %q: toxiproxy answered %d", proxy, resp.StatusCode())
	}
	return nil
}

// DeleteProxy removes a proxy entirely.
func (c *Client) DeleteProxy(ctx context.Context, proxy string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/proxies/%s", proxy))
	if err != nil {
		return fmt.Errorf("delete proxy %q: %w", proxy, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete proxy %q: toxiproxy answered %d", proxy, resp.StatusCode())
	}
	return nil
}
