//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips the test when no Docker daemon is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cli, err := testcontainers.NewDockerClientWithOpts(ctx)
	if err != nil {
		t.Skipf("skipping: docker client unavailable: %v", err)
	}
	defer cli.Close()

	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("skipping: docker daemon unreachable: %v", err)
	}
}

// UniqueName returns prefix with a short random suffix, usable as a container
// or database name that will not collide across parallel test runs.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
