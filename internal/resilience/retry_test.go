package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:  maxRetries,
		BackoffBase: 5 * time.Millisecond,
		BackoffMax:  20 * time.Millisecond,
	}
}

func TestRetry(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), testConfig(3), func() error {
			attempts++
			return nil
		})
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("success after transient failures", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), testConfig(3), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("503 service unavailable")
			}
			return nil
		})
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 3 {
			t.Errorf("Expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), testConfig(2), func() error {
			attempts++
			return errors.New("429 rate limit exceeded")
		})
		if err == nil {
			t.Error("Expected error after max retries")
		}
		if attempts != 3 { // initial + 2 retries
			t.Errorf("Expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("non-transient error returns immediately", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), testConfig(3), func() error {
			attempts++
			return errors.New("API error 401: invalid key")
		})
		if err == nil {
			t.Error("Expected error")
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("deadline exceeded is not retried", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), testConfig(3), func() error {
			attempts++
			return context.DeadlineExceeded
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected DeadlineExceeded, got: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := Retry(ctx, RetryConfig{
			MaxRetries:  10,
			BackoffBase: 50 * time.Millisecond,
			BackoffMax:  time.Second,
		}, func() error {
			attempts++
			return errors.New("503 service unavailable")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got: %v", err)
		}
		if attempts > 2 {
			t.Errorf("Should have stopped early, got %d attempts", attempts)
		}
	})
}

func TestCalculateBackoff(t *testing.T) {
	t.Run("exponential growth", func(t *testing.T) {
		base := 100 * time.Millisecond
		max := 10 * time.Second

		b1 := calculateBackoff(1, base, max, false)
		b2 := calculateBackoff(2, base, max, false)
		b3 := calculateBackoff(3, base, max, false)

		if b1 >= b2 || b2 >= b3 {
			t.Error("Backoff should grow exponentially")
		}
	})

	t.Run("respects max", func(t *testing.T) {
		b := calculateBackoff(10, 100*time.Millisecond, 500*time.Millisecond, false)
		if b > 500*time.Millisecond {
			t.Errorf("Backoff %v exceeds max", b)
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"rate limit", errors.New("status 429: rate limit"), true},
		{"server error", errors.New("API error: 500 Internal Server Error"), true},
		{"bad gateway", errors.New("502 bad gateway"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"auth failure", errors.New("API error: 401 Unauthorized"), false},
		{"deadline", context.DeadlineExceeded, false},
		{"malformed response", errors.New("parsing response: unexpected EOF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.expected {
				t.Errorf("isTransient() = %v, want %v", got, tt.expected)
			}
		})
	}
}
