// Package registry starts disposable Docker registry containers for
// integration tests, optionally protected by htpasswd basic auth.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "registry:2.8.3"

	// Port is the in-container registry port.
	Port = "5000/tcp"

	htpasswdPath = "/auth/htpasswd"

	defaultStartupTimeout = 30 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("registry: container is not running")

// Container is a started Docker registry.
type Container struct {
	testcontainers.Container

	user     string
	password string
}

// Run starts a registry container and waits for the API version endpoint to
// answer. With credentials configured the registry enforces basic auth
// against a generated htpasswd file.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	env := map[string]string{
		"REGISTRY_STORAGE_DELETE_ENABLED": "true",
	}
	var files []testcontainers.ContainerFile

	if cfg.user != "" {
		entry, err := htpasswdEntry(cfg.user, cfg.password)
		if err != nil {
			return nil, err
		}
		files = append(files, testcontainers.ContainerFile{
			Reader:            bytes.NewReader([]byte(entry)),
			ContainerFilePath: htpasswdPath,
			FileMode:          0o644,
		})
		env["REGISTRY_AUTH"] = "htpasswd"
		env["REGISTRY_AUTH_HTPASSWD_REALM"] = "Registry Realm"
		env["REGISTRY_AUTH_HTPASSWD_PATH"] = htpasswdPath
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Env:          env,
		Files:        files,
		// An auth-protected registry answers 401 on the version check, which
		// still proves the process is up.
		WaitingFor: wait.ForHTTP("/v2/").
			WithPort(Port).
			WithStatusCodeMatcher(func(status int) bool {
				return status == http.StatusOK || status == http.StatusUnauthorized
			}).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting registry container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start registry container: %w", err)
	}

	return &Container{Container: started, user: cfg.user, password: cfg.password}, nil
}

// htpasswdEntry renders a single htpasswd line. The registry only accepts
// bcrypt hashes.
func htpasswdEntry(user, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash registry password: %w", err)
	}
	return fmt.Sprintf("%s:%s\n", user, hash), nil
}

// BaseURL returns the base URL of the registry API. Returns ErrNotRunning
// when the container is stopped.
func (c *Container) BaseURL(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, port), nil
}

// HostPort returns the host:port reference to use in image names. Returns
// ErrNotRunning when the container is stopped.
func (c *Container) HostPort(ctx context.Context) (string, error) {
	if !c.IsRunning() {
		return "", ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(Port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", host, port), nil
}

// Catalog lists the repositories in the registry, authenticating when the
// registry was started with credentials.
func (c *Container) Catalog(ctx context.Context) ([]string, error) {
	baseURL, err := c.BaseURL(ctx)
	if err != nil {
		return nil, err
	}
	return fetchCatalog(ctx, baseURL, c.user, c.password)
}

func fetchCatalog(ctx context.Context, baseURL, user, password string) ([]string, error) {
	request := resty.New().SetBaseURL(baseURL).R().SetContext(ctx)
	if user != "" {
		request.SetBasicAuth(user, password)
	}

	resp, err := request.Get("/v2/_catalog")
	if err != nil {
		return nil, fmt.Errorf("fetch registry catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch registry catalog: registry answered %d", resp.StatusCode())
	}

	var repos []string
	gjson.GetBytes(resp.Body(), "repositories").ForEach(func(_, value gjson.Result) bool {
		repos = append(repos, value.String())
		return true
	})
	return repos, nil
}
