package keycloak

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestRequestToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/realms/shop/protocol/openid-connect/token", r.URL.Path)
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "storefront", r.PostForm.Get("client_id"))
		assert.Equal(t, "alice", r.PostForm.Get("username"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-value","token_type":"Bearer"}`))
	}))
	defer server.Close()

	token, err := requestToken(context.Background(), server.URL, "shop", "storefront", "alice", "wonderland")

	require.NoError(t, err)
	assert.Equal(t, "token-value", token)
}

func TestRequestToken_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "invalid credentials",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid_grant"}`,
			wantErr: "401",
		},
		{
			name:    "response without token",
			status:  http.StatusOK,
			body:    `{"token_type":"Bearer"}`,
			wantErr: "no access_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := requestToken(context.Background(), server.URL, "shop", "storefront", "alice", "bad")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaims(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                "alice",
		"preferred_username": "alice",
		"exp":                time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := Claims(signed)

	require.NoError(t, err)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, "alice", claims["preferred_username"])
}

func TestClaims_Malformed(t *testing.T) {
	_, err := Claims("not-a-jwt")
	assert.Error(t, err)
}

type stoppedContainer struct {
	testcontainers.Container
}

func (stoppedContainer) IsRunning() bool {
	return false
}

func TestBaseURL_NotRunning(t *testing.T) {
	c := &Container{Container: stoppedContainer{}}

	_, err := c.BaseURL(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = c.AdminToken(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestOptions(t *testing.T) {
	cfg := defaultSettings()
	WithImage("quay.io/keycloak/keycloak:25.0")(&cfg)
	WithAdmin("root", "s3cret")(&cfg)
	WithRealmImport([]byte(`{"realm":"shop"}`))(&cfg)
	WithStartupTimeout(3 * time.Minute)(&cfg)

	assert.Equal(t, "quay.io/keycloak/keycloak:25.0", cfg.image)
	assert.Equal(t, "root", cfg.adminUser)
	assert.Equal(t, "s3cret", cfg.adminPassword)
	assert.JSONEq(t, `{"realm":"shop"}`, string(cfg.realmJSON))
	assert.Equal(t, 3*time.Minute, cfg.startupTimeout)
}
