package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/embedded/container"
	"github.com/guttosm/embedded/internal/retry"
)

const (
	// ReplicaSetName is the replica set every node is started with.
	ReplicaSetName = "docker-rs"

	// DefaultRootUsername and DefaultRootPassword are applied when auth is
	// enabled without explicit credentials.
	DefaultRootUsername = "root"
	DefaultRootPassword = "password"

	// defaultAttempts bounds each bootstrap phase. mongod starts accepting
	// connections before its control plane can run rs.initiate(), and the
	// freshly initiated member needs a few election rounds before it reports
	// itself primary, so both phases poll up to this many times.
	defaultAttempts = 60

	// defaultInterval is the pause between attempts in both phases.
	defaultInterval = 100 * time.Millisecond

	adminDatabase = "admin"
)

// errInitiateRejected marks an initiate attempt whose command ran but exited
// non-zero, the retryable case while the node is still starting.
var errInitiateRejected = errors.New("mongodb: initiate command exited non-zero")

// Credentials carries the optional root credentials of a node. The zero value
// means authentication is disabled.
type Credentials struct {
	Enabled  bool
	Username string
	Password string
}

// ReplicaSetInitError reports that a started node could not be turned into a
// usable single node replica set: either rs.initiate() never exited cleanly,
// or the member never reported itself primary within the attempt ceiling.
// The node is in an undefined state and should be discarded.
type ReplicaSetInitError struct {
	Message string
}

func (e *ReplicaSetInitError) Error() string {
	return e.Message
}

// Node is the borrowed container handle the bootstrapper drives. It is
// satisfied by testcontainers.Container. The bootstrapper never terminates
// the node; ownership stays with the caller.
type Node interface {
	container.Execer
}

// BootstrapConfig bounds the replica set bootstrap protocol.
type BootstrapConfig struct {
	// Attempts is the per-phase ceiling. The initiate phase runs the command
	// up to Attempts+1 times (attempts 0..Attempts); the confirmation phase
	// polls inside the node with the same ceiling.
	Attempts int

	// Interval is the pause between attempts in both phases.
	Interval time.Duration
}

// DefaultBootstrapConfig returns the bounds Run uses.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{Attempts: defaultAttempts, Interval: defaultInterval}
}

// Bootstrapper converts a freshly started mongod into a single node replica
// set and confirms the member is primary before declaring it usable.
type Bootstrapper struct {
	cfg BootstrapConfig
}

// NewBootstrapper creates a Bootstrapper. Non-positive config fields fall
// back to the defaults.
func NewBootstrapper(cfg BootstrapConfig) *Bootstrapper {
	defaults := DefaultBootstrapConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaults.Attempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	return &Bootstrapper{cfg: cfg}
}

// Bootstrap drives node through replica set initialization. It issues
// rs.initiate() through the node's shell, retrying while the command exits
// non-zero, then runs an in-node script that blocks until the member reports
// itself primary. Both phases honor ctx.
//
// Exhausting either phase returns a *ReplicaSetInitError; transport failures
// while talking to the node are returned as-is without burning the budget.
func (b *Bootstrapper) Bootstrap(ctx context.Context, node Node, creds Credentials) error {
	log.Debug().
		Str("replica_set", ReplicaSetName).
		Int("attempts", b.cfg.Attempts).
		Msg("Initializing single node replica set")

	opts := retry.Options{
		MaxRetries: b.cfg.Attempts,
		Interval:   b.cfg.Interval,
		Log: func(attempt int, _ error) {
			log.Debug().Int("attempt", attempt).Msg("Replica set not initiated yet, retrying")
		},
	}

	last, err := retry.Do(ctx, opts, func(ctx context.Context) (container.ExecResult, error) {
		result, execErr := container.Exec(ctx, node, ShellCommand(creds, "rs.initiate();"))
		if execErr != nil {
			return result, retry.Abort(execErr)
		}
		if !result.Ok() {
			return result, errInitiateRejected
		}
		return result, nil
	})

	switch {
	case retry.IsExhausted(err):
		return &ReplicaSetInitError{
			Message: fmt.Sprintf("replica set initialization failed: %s", strings.TrimSpace(last.Output)),
		}
	case err != nil:
		return fmt.Errorf("initiate replica set: %w", err)
	}

	log.Debug().Msg("Replica set initiated, awaiting primary")

	confirmed, err := container.Exec(ctx, node, ShellCommand(creds, awaitPrimaryScript(b.cfg.Attempts, b.cfg.Interval)))
	if err != nil {
		return fmt.Errorf("await replica set primary: %w", err)
	}
	if !confirmed.Ok() {
		return &ReplicaSetInitError{
			Message: fmt.Sprintf("single node replica set was not initialized in %d attempts", b.cfg.Attempts),
		}
	}

	log.Debug().Str("replica_set", ReplicaSetName).Msg("Single node replica set is ready")
	return nil
}

// ShellCommand wraps a JavaScript snippet into a mongo shell invocation,
// injecting the root credentials and the admin auth scope when authentication
// is enabled.
func ShellCommand(creds Credentials, script string) []string {
	if creds.Enabled {
		return []string{
			"mongo",
			"-u", creds.Username,
			"-p", creds.Password,
			"--authenticationDatabase", adminDatabase,
			"--eval", script,
		}
	}
	return []string{"mongo", "--eval", script}
}

// awaitPrimaryScript renders the confirmation script that runs inside the
// node: it polls the isMaster command, sleeping between checks, and quits
// with exit code 1 once the attempt counter passes the ceiling. A clean exit
// means the member is primary. This keeps the whole wait in a single shell
// round trip instead of one docker exec per poll.
func awaitPrimaryScript(attempts int, interval time.Duration) string {
	return fmt.Sprintf(
		"var attempt = 0; "+
			"while(db.runCommand( { isMaster: 1 } ).ismaster==false) { "+
			"if (attempt > %d) {quit(1);} "+
			"print('An attempt to await for a single node replica set initialization: ' + attempt); "+
			"sleep(%d); "+
			"attempt++; "+
			"}",
		attempts, interval.Milliseconds(),
	)
}
