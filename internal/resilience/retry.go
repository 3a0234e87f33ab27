// Package resilience provides bounded retry for provider calls.
package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig configuration for retry logic.
type RetryConfig struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Jitter      bool
}

// DefaultRetryConfig returns the retry budget used for provider calls.
// Retries stay inside the caller's context deadline, so a slow provider
// still degrades within the configured timeout.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:  maxRetries,
		BackoffBase: 200 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		Jitter:      true,
	}
}

// Retry executes a function with exponential backoff. Only transient
// failures are retried; anything else returns immediately.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt, config.BackoffBase, config.BackoffMax, config.Jitter)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isTransient(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// calculateBackoff calculates exponential backoff with optional jitter.
func calculateBackoff(attempt int, base, max time.Duration, jitter bool) time.Duration {
	backoff := base * time.Duration(math.Pow(2, float64(attempt)))

	if backoff > max {
		backoff = max
	}

	if jitter {
		jitterRange := float64(backoff) * 0.25
		jitterAmount := (rand.Float64() - 0.5) * 2 * jitterRange
		backoff = backoff + time.Duration(jitterAmount)
	}

	if backoff < 0 {
		backoff = base
	}

	return backoff
}

// isTransient reports whether a provider failure is worth retrying.
// Quota exhaustion, server-side errors, and broken connections are
// transient; auth failures and malformed responses are not. Context
// expiry is never retried so degraded responses stay within the
// provider timeout.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "deadline exceeded") || strings.Contains(errStr, "canceled") {
		return false
	}

	switch {
	case strings.Contains(errStr, "429"), strings.Contains(errStr, "rate limit"):
		return true
	case strings.Contains(errStr, "500"), strings.Contains(errStr, "502"),
		strings.Contains(errStr, "503"), strings.Contains(errStr, "504"):
		return true
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "connection reset"),
		strings.Contains(errStr, "broken pipe"):
		return true
	}

	return false
}
