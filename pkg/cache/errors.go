package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that require an entry to exist.
var ErrNotFound = errors.New("not found")

// RetryableError marks an error that RetryWithBackoff should retry.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff interval. Tests shorten it.
var retryDelay = time.Second

// RetryWithBackoff calls fn up to 3 times, doubling the delay between
// attempts. Only errors wrapped with Retryable are retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
