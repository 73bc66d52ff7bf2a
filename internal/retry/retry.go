// Package retry provides a bounded, fixed-interval retry combinator used by
// the container presets while a freshly started service is still coming up.
package retry

import (
	"context"
	"errors"
	"time"
)

// Options configures a call to Do.
type Options struct {
	// MaxRetries is the number of re-attempts after the first try, so the
	// operation runs at most MaxRetries+1 times (attempts 0..MaxRetries).
	MaxRetries int

	// Interval is the fixed pause between attempts.
	Interval time.Duration

	// Log, when set, is invoked after each failed attempt that will be
	// retried, with the attempt number and the error it produced.
	Log func(attempt int, err error)
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is done. The payload of the last attempt is returned alongside the
// error so callers can surface captured output in failure reports.
//
// A failure wrapped with Abort stops the loop immediately and is reported as
// an *AbortedError; running out of attempts yields an *ExhaustedError that
// unwraps to the final attempt's error.
func Do[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		payload T
		err     error
	)

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return payload, &AbortedError{attempts: attempt, err: ctxErr}
		}

		payload, err = fn(ctx)
		if err == nil {
			return payload, nil
		}

		var abort *abortError
		if errors.As(err, &abort) {
			return payload, &AbortedError{attempts: attempt + 1, err: abort.err}
		}

		if attempt == opts.MaxRetries {
			break
		}

		if opts.Log != nil {
			opts.Log(attempt, err)
		}

		if sleepErr := sleep(ctx, opts.Interval); sleepErr != nil {
			return payload, &AbortedError{attempts: attempt + 1, err: sleepErr}
		}
	}

	return payload, &ExhaustedError{attempts: opts.MaxRetries + 1, err: err}
}

// sleep pauses for d unless ctx finishes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
