//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	segmentio "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/guttosm/embedded/internal/retry"
)

func TestRun_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c, err := Run(ctx)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	brokers, err := c.Brokers(ctx)
	require.NoError(t, err)
	require.Len(t, brokers, 1)

	require.NoError(t, c.CreateTopic(ctx, "events", 1))

	writer := &segmentio.Writer{
		Addr:     segmentio.TCP(brokers...),
		Topic:    "events",
		Balancer: &segmentio.LeastBytes{},
	}
	defer func() {
		_ = writer.Close()
	}()

	// Partition leadership can lag topic creation for a moment.
	_, err = retry.Do(ctx, retry.Options{MaxRetries: 20, Interval: 500 * time.Millisecond},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, writer.WriteMessages(ctx, segmentio.Message{
				Key:   []byte("order-42"),
				Value: []byte("created"),
			})
		})
	require.NoError(t, err)

	reader := segmentio.NewReader(segmentio.ReaderConfig{
		Brokers:  brokers,
		Topic:    "events",
		GroupID:  "embedded-it",
		MaxWait:  time.Second,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer func() {
		_ = reader.Close()
	}()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-42", string(msg.Key))
	assert.Equal(t, "created", string(msg.Value))
}
