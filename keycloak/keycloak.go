// Package keycloak starts disposable Keycloak containers in dev mode for
// integration tests, with helpers for obtaining and decoding OIDC tokens.
package keycloak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tidwall/gjson"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "quay.io/keycloak/keycloak:24.0"

	// Port is the in-container HTTP port.
	Port = "8080/tcp"

	DefaultAdminUser     = "admin"
	DefaultAdminPassword = "admin"

	// MasterRealm always exists and holds the admin account.
	MasterRealm = "master"

	// realmImportPath is where Keycloak picks up realm definitions when
	// started with --import-realm.
	realmImportPath = "/opt/keycloak/data/import/realm.json"

	defaultStartupTimeout = 120 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("keycloak: container is not running")

// Container is a started Keycloak dev server.
type Container struct {
	testcontainers.Container

	adminUser     string
	adminPassword string
}

// Run starts a Keycloak container in dev mode and waits for the master realm
// to answer.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := []string{"start-dev"}
	var files []testcontainers.ContainerFile
	if len(cfg.realmJSON) > 0 {
		cmd = append(cmd, "--import-realm")
		files = append(files, testcontainers.ContainerFile{
			Reader:            bytes.NewReader(cfg.realmJSON),
			ContainerFilePath: realmImportPath,
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{Port},
		Cmd:          cmd,
		Files:        files,
		Env: map[string]string{
			"KEYCLOAK_ADMIN":          cfg.adminUser,
			"KEYCLOAK_ADMIN_PASSWORD": cfg.adminPassword,
		},
		WaitingFor: wait.ForHTTP("/realms/master").
			WithPort(Port).
			WithStartupTimeout(cfg.startupTimeout),
	}

	log.Info().Str("image", cfg.image).Msg("Starting keycloak container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start keycloak container: %w", err)
	}

	return &Container{
		Container:     started,
		adminUser:     cfg.adminUser,
		adminPassword: cfg.adminPassword,
	}, nil
}

// BaseURL returns the base URL of the Keycloak server. Returns ErrNotRunning
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

// Token performs a direct-access password grant against the given realm and
// returns the access token.
func (c *Container) Token(ctx context.Context, realm, clientID, username, password string) (string, error) {
	baseURL, err := c.BaseURL(ctx)
	if err != nil {
		return "", err
	}
	return requestToken(ctx, baseURL, realm, clientID, username, password)
}

// AdminToken obtains a master realm token for the bootstrap admin account.
func (c *Container) AdminToken(ctx context.Context) (string, error) {
	return c.Token(ctx, MasterRealm, "admin-cli", c.adminUser, c.adminPassword)
}

// requestToken drives the OIDC token endpoint.
func requestToken(ctx context.Context, baseURL, realm, clientID, username, password string) (string, error) {
	resp, err := resty.New().SetBaseURL(baseURL).R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": "password",
			"client_id":  clientID,
			"username":   username,
			"password":   password,
		}).
		Post(fmt.Sprintf("/realms/%s/protocol/openid-connect/token", realm))
	if err != nil {
		return "", fmt.Errorf("request token for %q: %w", username, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("request token for %q: keycloak answered %d: %s", username, resp.StatusCode(), resp.String())
	}

	token := gjson.GetBytes(resp.Body(), "access_token")
	if !token.Exists() || token.String() == "" {
		return "", fmt.Errorf("request token for %q: response carries no access_token", username)
	}
	return token.String(), nil
}

// Claims decodes a JWT without verifying its signature. Test assertions care
// about the payload; the issuer is the throwaway server started two lines
// earlier.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}
