//go:build integration

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestRun_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := Run(ctx)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	repos, err := c.Catalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestRun_Integration_WithBasicAuth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := Run(ctx, WithBasicAuth("tester", "s3cret"))
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	baseURL, err := c.BaseURL(ctx)
	require.NoError(t, err)

	anonymous, err := resty.New().R().SetContext(ctx).Get(baseURL + "/v2/")
	require.NoError(t, err)
	assert.Equal(t, 401, anonymous.StatusCode())

	repos, err := c.Catalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, repos)
}
