package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: retries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestRetrySuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls.Add(1)
		return nil
	})

	if err != nil {
		t.Errorf("Retry() error = %v, want nil", err)
	}
	if calls.Load() != 1 {
		t.Errorf("call count = %d, want 1", calls.Load())
	}
}

func TestRetryEventualSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	err := Retry(context.Background(), fastPolicy(3), func() error {
		if calls.Add(1) < 3 {
			return errors.New("early EOF")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Retry() error = %v, want nil", err)
	}
	if calls.Load() != 3 {
		t.Errorf("call count = %d, want 3", calls.Load())
	}
}

func TestRetryExhausted(t *testing.T) {
	t.Parallel()

	persistent := errors.New("could not resolve host")
	var calls atomic.Int32
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls.Add(1)
		return persistent
	})

	if !errors.Is(err, persistent) {
		t.Errorf("Retry() error = %v, want %v", err, persistent)
	}
	if calls.Load() != 4 {
		t.Errorf("call count = %d, want 4", calls.Load())
	}
}

func TestRetryPredicate(t *testing.T) {
	t.Parallel()

	transient := errors.New("transient")
	permanent := errors.New("permanent")
	policy := fastPolicy(5)
	policy.Retryable = func(err error) bool { return errors.Is(err, transient) }

	tests := []struct {
		name string
		err  error
		want int32
	}{
		{"retryable error uses every attempt", transient, 6},
		{"other errors fail immediately", permanent, 1},
		{"cancellation is never retried", context.Canceled, 1},
		{"deadline is never retried", context.DeadlineExceeded, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			_ = Retry(context.Background(), policy, func() error {
				calls.Add(1)
				return tt.err
			})
			if calls.Load() != tt.want {
				t.Errorf("call count = %d, want %d", calls.Load(), tt.want)
			}
		})
	}
}

func TestRetryZeroAndNegativeRetries(t *testing.T) {
	t.Parallel()

	for _, retries := range []int{0, -2} {
		var calls atomic.Int32
		err := Retry(context.Background(), fastPolicy(retries), func() error {
			calls.Add(1)
			return errors.New("fail")
		})
		if err == nil {
			t.Errorf("retries=%d: error = nil, want error", retries)
		}
		if calls.Load() != 1 {
			t.Errorf("retries=%d: call count = %d, want 1", retries, calls.Load())
		}
	}
}

func TestRetryContextCancelledDuringWait(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{MaxRetries: 10, BaseDelay: time.Second, MaxDelay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	start := time.Now()
	err := Retry(ctx, policy, func() error {
		calls.Add(1)
		cancel()
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("call count = %d, want 1", calls.Load())
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Retry waited out the backoff after cancellation")
	}
}

func TestRetryAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Retry(ctx, fastPolicy(3), func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("Retry() error = %v, called = %v", err, called)
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy(2)
	if p.MaxRetries != 2 || !p.UseJitter || p.BaseDelay != defaultBaseDelay || p.MaxDelay != defaultMaxDelay {
		t.Errorf("DefaultPolicy(2) = %+v", p)
	}
	if DefaultPolicy(-1).MaxRetries != 0 {
		t.Error("negative retries should clamp to 0")
	}
}

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		attempt   int
		baseDelay time.Duration
		maxDelay  time.Duration
		want      time.Duration
	}{
		{"first attempt", 0, 100 * time.Millisecond, 10 * time.Second, 100 * time.Millisecond},
		{"second attempt", 1, 100 * time.Millisecond, 10 * time.Second, 200 * time.Millisecond},
		{"third attempt", 2, 100 * time.Millisecond, 10 * time.Second, 400 * time.Millisecond},
		{"capped at max delay", 10, 100 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond},
		{"zero values use defaults", 0, 0, 0, defaultBaseDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateBackoff(tt.attempt, tt.baseDelay, tt.maxDelay, false); got != tt.want {
				t.Errorf("CalculateBackoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	for range 20 {
		d := CalculateBackoff(2, base, 10*time.Second, true)
		if d < 200*time.Millisecond || d >= 600*time.Millisecond {
			t.Fatalf("jittered delay %v outside [200ms, 600ms)", d)
		}
	}
}
