//go:build integration

package keycloak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const testRealm = `{
	"realm": "shop",
	"enabled": true,
	"clients": [
		{
			"clientId": "storefront",
			"enabled": true,
			"publicClient": true,
			"directAccessGrantsEnabled": true
		}
	],
	"users": [
		{
			"username": "alice",
			"enabled": true,
			"credentials": [{"type": "password", "value": "wonderland"}]
		}
	]
}`

func TestRun_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c, err := Run(ctx, WithRealmImport([]byte(testRealm)))
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	t.Run("admin token", func(t *testing.T) {
		token, err := c.AdminToken(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("imported realm issues tokens", func(t *testing.T) {
		token, err := c.Token(ctx, "shop", "storefront", "alice", "wonderland")
		require.NoError(t, err)

		claims, err := Claims(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims["preferred_username"])

		issuer, err := claims.GetIssuer()
		require.NoError(t, err)
		assert.Contains(t, issuer, "/realms/shop")
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := c.Token(ctx, "shop", "storefront", "alice", "wrong")
		assert.Error(t, err)
	})
}
