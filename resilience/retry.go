package resilience

import (
	"context"
	"time"
)

// RetryConfig configures a decision-driven retry loop. The loop has no
// attempt limit of its own; ShouldRetry decides when to stop.
type RetryConfig struct {
	// Backoff controls the delay between attempts.
	Backoff BackoffConfig
	// ShouldRetry is called after each failure with the 1-based count of
	// failures so far. Returning false ends the loop. Nil never retries.
	ShouldRetry func(attempt int, err error) bool
	// OnRetry is called before sleeping ahead of each retry.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// Retry runs fn until it succeeds or ShouldRetry gives up. fn receives the
// 1-based number of the attempt it is executing. The result and error of the
// last attempt are returned; if ctx ends during a backoff wait the last
// result is returned with ctx.Err().
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(attempt int) (T, error)) (T, error) {
	for attempt := 1; ; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		if cfg.ShouldRetry == nil || !cfg.ShouldRetry(attempt, err) {
			return result, err
		}

		backoff := cfg.Backoff.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}
}

// MaxAttempts returns a ShouldRetry that allows up to n attempts in total
// for errors accepted by retryIf (all errors when retryIf is nil).
func MaxAttempts(n int, retryIf func(error) bool) func(int, error) bool {
	return func(attempt int, err error) bool {
		if attempt >= n {
			return false
		}
		return retryIf == nil || retryIf(err)
	}
}
