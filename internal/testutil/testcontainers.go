//go:build integration

// Package testutil provides shared helpers for integration tests: a Docker
// availability probe, unique resource names, and a reusable MongoDB replica
// set container.
package testutil

import (
	"context"
	"fmt"

	"github.com/guttosm/embedded/mongodb"
)

// MongoDBContainer wraps a bootstrapped MongoDB replica set container.
type MongoDBContainer struct {
	Container *mongodb.Container
	URI       string
}

// SetupMongoDB creates and starts a MongoDB replica set container.
// For better performance, consider using GetSharedMongoDB() from test_container.go
// with TestMain for container reuse.
func SetupMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	mongoContainer, err := mongodb.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	uri, err := mongoContainer.ReplicaSetURL(ctx, "")
	if err != nil {
		_ = mongoContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoDBContainer{
		Container: mongoContainer,
		URI:       uri,
	}, nil
}

// Cleanup terminates the MongoDB container.
func (m *MongoDBContainer) Cleanup(ctx context.Context) error {
	if m.Container != nil {
		if err := m.Container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}
