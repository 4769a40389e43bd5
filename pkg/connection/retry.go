package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Connection errors.
var (
	// ErrNotConnected indicates an operation was attempted on a
	// connection with no live worker pair.
	ErrNotConnected = errors.New("not connected")

	// ErrRetryExhausted indicates the retry loop used all attempts.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// RetryFunc is one connection attempt. It should return nil on
// success or an error on failure; it must not retry internally.
type RetryFunc func(ctx context.Context) error

// Retry calls fn up to maxAttempts times, sleeping for a backoff
// delay between failed attempts. It returns nil as soon as one
// attempt succeeds, the context error if the context is cancelled
// while waiting, and ErrRetryExhausted (wrapping the last attempt's
// error) once all attempts have failed.
func Retry(ctx context.Context, maxAttempts int, fn RetryFunc) error {
	return RetryWithLimits(ctx, maxAttempts, DefaultBaseDelay, DefaultMaxDelay, fn)
}

// RetryWithLimits is Retry with custom backoff base and maximum
// delays.
func RetryWithLimits(ctx context.Context, maxAttempts int, base, max time.Duration, fn RetryFunc) error {
	if maxAttempts <= 0 {
		return fmt.Errorf("%w: no attempts allowed", ErrRetryExhausted)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, Delay(attempt-1, base, max)); err != nil {
				return err
			}
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, maxAttempts, lastErr)
}

// sleep waits for the given duration or until the context is
// cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
