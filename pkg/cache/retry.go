package cache

import (
	"context"
	"errors"
	"time"
)

// Backoff retries an operation with exponentially growing delays.
type Backoff struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait after the first failure; doubles each time
}

// DefaultBackoff is used when connecting to remote backends.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// permanentError marks an error that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that [Backoff.Retry] gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped by Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Retry calls fn until it succeeds, returns a permanent error, the attempts
// run out or ctx is done. Permanent errors are returned unwrapped.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}
