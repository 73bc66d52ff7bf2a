// Package container holds the small shared surface every preset in this
// module builds on: command execution inside a running container, endpoint
// resolution for mapped ports, and log capture.
package container

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/go-connections/nat"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
)

// ExecResult is the outcome of one command run inside a container.
type ExecResult struct {
	ExitCode int
	Output   string
}

// Ok reports whether the command exited cleanly.
func (r ExecResult) Ok() bool {
	return r.ExitCode == 0
}

// Execer is the command-execution surface of a running container.
// testcontainers.Container satisfies it.
type Execer interface {
	Exec(ctx context.Context, cmd []string, options ...tcexec.ProcessOption) (int, io.Reader, error)
}

// Exec runs argv inside the container and captures its combined stdout and
// stderr. It blocks until the in-container command finishes or ctx is done.
// The returned error covers transport failures only; command failures are
// reported through ExecResult.ExitCode.
func Exec(ctx context.Context, target Execer, argv []string) (ExecResult, error) {
	if len(argv) == 0 {
		return ExecResult{}, fmt.Errorf("exec: empty command")
	}

	code, reader, err := target.Exec(ctx, argv, tcexec.Multiplexed())
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec %q: %w", argv[0], err)
	}

	output, err := io.ReadAll(reader)
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec %q: read output: %w", argv[0], err)
	}

	return ExecResult{ExitCode: code, Output: string(output)}, nil
}

// Addressable is the endpoint surface of a running container.
// testcontainers.Container satisfies it.
type Addressable interface {
	Host(ctx context.Context) (string, error)
	MappedPort(ctx context.Context, port nat.Port) (nat.Port, error)
}

// Endpoint resolves the host address and externally mapped port for the given
// container port.
func Endpoint(ctx context.Context, target Addressable, port nat.Port) (string, int, error) {
	host, err := target.Host(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("resolve container host: %w", err)
	}

	mapped, err := target.MappedPort(ctx, port)
	if err != nil {
		return "", 0, fmt.Errorf("resolve mapped port %s: %w", port, err)
	}

	return host, mapped.Int(), nil
}

// LogProvider is the log surface of a running container.
// testcontainers.Container satisfies it.
type LogProvider interface {
	Logs(ctx context.Context) (io.ReadCloser, error)
}

// ReadLogs drains and returns the container's log output so far.
func ReadLogs(ctx context.Context, target LogProvider) (string, error) {
	stream, err := target.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch container logs: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	output, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("read container logs: %w", err)
	}

	return string(output), nil
}
