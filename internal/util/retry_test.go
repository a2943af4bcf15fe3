package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SuccessImmediate(t *testing.T) {
	result, err := Retry(3, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %d", result)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result, err := Retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 99, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 99 {
		t.Fatalf("expected 99, got %d", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_PersistentFailure(t *testing.T) {
	calls := 0
	_, err := Retry(3, func() (int, error) {
		calls++
		return 0, errors.New("persistent")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithContext_CancelledBeforeCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithContext(ctx, 3, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("should not run")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected 0 calls, got %d", calls)
	}
}

func TestRetryWithContext_DeadlineNotRetried(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	calls := 0
	_, err := RetryWithContext(ctx, 3, func(context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryIfWithContext_NonRetryableStopsEarly(t *testing.T) {
	fatal := errors.New("malformed response")

	calls := 0
	_, err := RetryIfWithContext(context.Background(), 3,
		func(err error) bool { return !errors.Is(err, fatal) },
		func(context.Context) (int, error) {
			calls++
			return 0, fatal
		})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryIfWithContext_CallLocalDeadlineRetried(t *testing.T) {
	calls := 0
	result, err := RetryIfWithContext(context.Background(), 2,
		func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
		func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				// A deadline from the call's own timeout, not the caller's ctx.
				return 0, context.DeadlineExceeded
			}
			return 7, nil
		})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 7 || calls != 2 {
		t.Fatalf("expected result 7 after 2 calls, got %d after %d", result, calls)
	}
}

func TestRetryIfWithContext_CallerDeadlineAborts(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	calls := 0
	_, err := RetryIfWithContext(ctx, 3,
		func(error) bool { return true },
		func(context.Context) (int, error) {
			calls++
			return 0, context.DeadlineExceeded
		})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected 0 calls with expired caller context, got %d", calls)
	}
}

func TestRetryIfWithContext_RetryableRetried(t *testing.T) {
	transient := errors.New("timeout")

	calls := 0
	result, err := RetryIfWithContext(context.Background(), 2,
		func(err error) bool { return errors.Is(err, transient) },
		func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, transient
			}
			return 7, nil
		})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 7 || calls != 2 {
		t.Fatalf("expected result 7 after 2 calls, got %d after %d", result, calls)
	}
}
