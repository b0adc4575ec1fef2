// Package resilience retries operations that fail for transient reasons,
// such as a git fetch interrupted by a flaky network.
package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 10 * time.Second
)

// RetryPolicy defines how often and how patiently an operation is retried.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int

	// BaseDelay is the wait before the first retry. It doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration

	// UseJitter scales each wait by a random factor in [0.5, 1.5).
	UseJitter bool

	// Retryable decides whether err is worth another attempt. A nil
	// Retryable retries every error except context cancellation.
	Retryable func(err error) bool
}

// DefaultPolicy returns a jittered policy with the given retry count.
func DefaultPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: max(retries, 0),
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		UseJitter:  true,
	}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. The error of the last attempt is returned. Waiting
// between attempts stops early when ctx is done.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	attempts := max(policy.MaxRetries, 0) + 1
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !policy.retryable(err) {
			return err
		}

		if attempt < attempts-1 {
			delay := CalculateBackoff(attempt, policy.BaseDelay, policy.MaxDelay, policy.UseJitter)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (p RetryPolicy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// CalculateBackoff returns the wait before retry number attempt+1:
// baseDelay * 2^attempt, capped at maxDelay.
func CalculateBackoff(attempt int, baseDelay, maxDelay time.Duration, useJitter bool) time.Duration {
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	delay := baseDelay
	for range attempt {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}

	if useJitter {
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	}

	return min(delay, maxDelay)
}
