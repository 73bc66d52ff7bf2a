// Package kafka starts disposable single-node Kafka brokers in KRaft mode
// for integration tests.
//
// Kafka needs to advertise the externally mapped port to clients, but that
// port is only known after the container has started. The broker is therefore
// launched with a placeholder entrypoint that blocks until a starter script
// appears, and a post-start hook renders the script with the real endpoint
// and copies it in.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/embedded/container"
)

const (
	// DefaultImage is the image Run starts when none is configured.
	DefaultImage = "confluentinc/cp-kafka:7.5.0"

	// PublicPort is the listener advertised to host-side clients.
	PublicPort = "9093/tcp"

	// DefaultClusterID formats the KRaft storage on first boot.
	DefaultClusterID = "MkU3OEVBNTcwNTJENDM2Qk"

	starterScript = "/usr/sbin/embedded_start.sh"

	defaultStartupTimeout = 120 * time.Second
)

// ErrNotRunning is returned when connection details are requested from a
// container that is not running.
var ErrNotRunning = errors.New("kafka: container is not running")

// Container is a started Kafka broker.
type Container struct {
	testcontainers.Container
}

// Run starts a single-node KRaft broker and blocks until it leaves log
// recovery.
func Run(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{PublicPort},
		Env: map[string]string{
			"KAFKA_LISTENERS":                                "PLAINTEXT://0.0.0.0:9093,BROKER://0.0.0.0:9092,CONTROLLER://0.0.0.0:9094",
			"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":           "BROKER:PLAINTEXT,PLAINTEXT:PLAINTEXT,CONTROLLER:PLAINTEXT",
			"KAFKA_INTER_BROKER_LISTENER_NAME":               "BROKER",
			"KAFKA_NODE_ID":                                  "1",
			"KAFKA_PROCESS_ROLES":                            "broker,controller",
			"KAFKA_CONTROLLER_QUORUM_VOTERS":                 "1@localhost:9094",
			"KAFKA_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_OFFSETS_TOPIC_NUM_PARTITIONS":             "1",
			"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
			"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR":            "1",
			"KAFKA_GROUP_INITIAL_REBALANCE_DELAY_MS":         "0",
			"CLUSTER_ID":                                     cfg.clusterID,
		},
		Entrypoint: []string{"sh"},
		// Block until the post-start hook has rendered the starter script.
		Cmd: []string{"-c", "while [ ! -f " + starterScript + " ]; do sleep 0.1; done; bash " + starterScript},
		LifecycleHooks: []testcontainers.ContainerLifecycleHooks{
			{
				PostStarts: []testcontainers.ContainerHook{
					func(ctx context.Context, c testcontainers.Container) error {
						host, port, err := container.Endpoint(ctx, c, nat.Port(PublicPort))
						if err != nil {
							return err
						}

						script := starterScriptContent(host, port)
						if err := c.CopyToContainer(ctx, []byte(script), starterScript, 0o755); err != nil {
							return fmt.Errorf("copy starter script: %w", err)
						}

						return wait.ForLog(".*Transitioning from RECOVERY to RUNNING.*").
							AsRegexp().
							WithStartupTimeout(cfg.startupTimeout).
							WaitUntilReady(ctx, c)
					},
				},
			},
		},
	}

	log.Info().Str("image", cfg.image).Msg("Starting kafka container")

	started, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start kafka container: %w", err)
	}

	return &Container{Container: started}, nil
}

// starterScriptContent renders the deferred broker launch: the advertised
// listeners can only be set once the mapped public port is known.
func starterScriptContent(host string, port int) string {
	return fmt.Sprintf(`#!/bin/bash
export KAFKA_ADVERTISED_LISTENERS=PLAINTEXT://%s:%d,BROKER://localhost:9092
/etc/confluent/docker/run
`, host, port)
}

// Brokers returns the bootstrap broker list for host-side clients. Returns
// ErrNotRunning when the container is stopped.
func (c *Container) Brokers(ctx context.Context) ([]string, error) {
	if !c.IsRunning() {
		return nil, ErrNotRunning
	}

	host, port, err := container.Endpoint(ctx, c.Container, nat.Port(PublicPort))
	if err != nil {
		return nil, err
	}

	return []string{fmt.Sprintf("%s:%d", host, port)}, nil
}

// CreateTopic creates a topic with the given partition count and a
// replication factor of one.
func (c *Container) CreateTopic(ctx context.Context, topic string, partitions int) error {
	brokers, err := c.Brokers(ctx)
	if err != nil {
		return err
	}
	if partitions <= 0 {
		partitions = 1
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka broker: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}

	log.Debug().Str("topic", topic).Int("partitions", partitions).Msg("Created kafka topic")
	return nil
}
