package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/siamauto/chatcore/logging"
)

// RetryConfig is the bounded retry policy for model calls: attempt count,
// an error-class predicate and a doubling backoff schedule. With the
// defaults a failing call waits 1s then 2s and gives up after the third
// attempt.
type RetryConfig struct {
	MaxAttempts     int           // Total attempts including the first
	InitialInterval time.Duration // Backoff before the second attempt
	MaxInterval     time.Duration // Backoff ceiling
}

// DefaultRetryConfig returns the defaults for transient-overload handling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
	}
}

// IsOverloaded reports whether the error signals a transient provider
// overload worth retrying. Anything else is fatal for the attempt loop.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"overloaded",
		"rate limit",
		"quota exceeded",
		"429",
		"503",
		"service unavailable",
		"temporarily unavailable",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// withRetry runs fn under the bounded retry policy. Non-retryable errors
// abort immediately; the backoff sleep is cancellable by the enclosing turn
// timeout.
func withRetry[T any](ctx context.Context, cfg RetryConfig, logger logging.Logger, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := cfg.InitialInterval

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsOverloaded(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn("gateway.retry", "attempt", attempt, "delay", delay.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, cfg.MaxInterval)
		}
	}
	return zero, fmt.Errorf("model call failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
