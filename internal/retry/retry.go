// Package retry provides retries with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config controls how often and how fast an operation is retried.
type Config struct {
	MaxAttempts int           // total attempts; zero or less means no limit
	InitialWait time.Duration // wait before the second attempt
	MaxWait     time.Duration // backoff ceiling
	Multiplier  float64       // backoff growth factor
	Jitter      float64       // fraction of the wait randomized (0-1)
}

// DefaultConfig returns the defaults used for API calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// RetryableError marks an error as transient. Do retries only errors
// wrapped with Retryable; everything else fails the operation on the spot.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string { return e.Err.Error() }

func (e RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so Do will retry it. Returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return RetryableError{Err: err}
}

// IsRetryable reports whether err carries the retryable marker.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}

// wait computes the backoff before attempt+1, capped and jittered.
func wait(cfg Config, attempt int) time.Duration {
	w := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if w > float64(cfg.MaxWait) {
		w = float64(cfg.MaxWait)
	}
	if cfg.Jitter > 0 {
		w += w * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(w)
}

// DoWithResult runs fn until it succeeds, the error is not retryable, the
// attempts are exhausted, or ctx is done. Without an attempt limit it keeps
// going until one of the other conditions stops it.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; ; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait(cfg, attempt)):
		}
	}

	return zero, lastErr
}

// Do runs fn until it succeeds, with the same rules as DoWithResult.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
