package retry

import (
	"errors"
	"fmt"
)

// ExhaustedError is returned by Do once the attempt budget is spent without a
// success. Unwrap yields the error from the final attempt.
type ExhaustedError struct {
	attempts int
	err      error
}

func (e *ExhaustedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("retry: exhausted after %d attempts", e.attempts)
	}
	return fmt.Sprintf("retry: exhausted after %d attempts, last error: %s", e.attempts, e.err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.err
}

// Attempts returns how many times the operation actually ran.
func (e *ExhaustedError) Attempts() int {
	return e.attempts
}

// AbortedError is returned by Do when the loop stopped before its budget,
// either because an attempt returned an error wrapped with Abort or because
// the context finished. Unwrap yields the cause.
type AbortedError struct {
	attempts int
	err      error
}

func (e *AbortedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("retry: aborted after %d attempts", e.attempts)
	}
	return fmt.Sprintf("retry: aborted after %d attempts: %s", e.attempts, e.err)
}

func (e *AbortedError) Unwrap() error {
	return e.err
}

// Attempts returns how many times the operation actually ran.
func (e *AbortedError) Attempts() int {
	return e.attempts
}

// abortError marks an attempt error as non-retryable.
type abortError struct {
	err error
}

func (a *abortError) Error() string {
	return a.err.Error()
}

func (a *abortError) Unwrap() error {
	return a.err
}

// Abort wraps err so that Do stops immediately instead of burning the
// remaining attempts. Do reports the failure as an *AbortedError.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &abortError{err: err}
}

// IsExhausted reports whether err is (or wraps) an *ExhaustedError.
func IsExhausted(err error) bool {
	var target *ExhaustedError
	return errors.As(err, &target)
}

// IsAborted reports whether err is (or wraps) an *AbortedError.
func IsAborted(err error) bool {
	var target *AbortedError
	return errors.As(err, &target)
}
