package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestDoAlwaysFailingPerformsExactAttempts checks the attempt budget and
// that the final error is propagated unchanged.
func TestDoAlwaysFailingPerformsExactAttempts(t *testing.T) {
	wantErr := errors.New("remote unavailable")
	calls := 0
	delays := 0

	policy := Policy{
		MaxAttempts: 4,
		Delay:       time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays++
			if !errors.Is(err, wantErr) {
				t.Fatalf("OnRetry err = %v, want %v", err, wantErr)
			}
			if delay != time.Millisecond {
				t.Fatalf("OnRetry delay = %v, want 1ms", delay)
			}
		},
	}

	_, err := Do(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "", wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("Do() error = %v, want %v", err, wantErr)
	}
	if calls != 4 {
		t.Fatalf("attempts = %d, want 4", calls)
	}
	if delays != 3 {
		t.Fatalf("delays = %d, want 3", delays)
	}
}

// TestDoRecoversAfterTransientFailures checks success after k failures.
func TestDoRecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Policy{MaxAttempts: 5, Delay: time.Millisecond},
		func(ctx context.Context) (string, error) {
			calls++
			if calls <= 2 {
				return "", errors.New("hiccup")
			}
			return "transcript", nil
		})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "transcript" {
		t.Fatalf("result = %q, want transcript", got)
	}
	if calls != 3 {
		t.Fatalf("attempts = %d, want 3", calls)
	}
}

// TestDoSucceedsFirstAttemptSkipsDelay checks no sleep on immediate success.
func TestDoSucceedsFirstAttemptSkipsDelay(t *testing.T) {
	start := time.Now()
	got, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Second},
		func(ctx context.Context) (int, error) {
			return 42, nil
		})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("result = %d, want 42", got)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("success should not wait out the retry delay")
	}
}

// TestDoSingleAttemptPolicy checks MaxAttempts=1 never retries.
func TestDoSingleAttemptPolicy(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 1, Delay: time.Millisecond},
		func(ctx context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("nope")
		})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("attempts = %d, want 1", calls)
	}
}

// TestDoCancelledDuringSleepStopsRetrying checks the cancellation hook.
func TestDoCancelledDuringSleepStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	policy := Policy{
		MaxAttempts: 10,
		Delay:       time.Minute,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			cancel()
		},
	}

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("fail")
		})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Do() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do() did not return after cancellation")
	}
	if calls != 1 {
		t.Fatalf("attempts = %d, want 1", calls)
	}
}

// TestDoFunc checks the error-only wrapper.
func TestDoFunc(t *testing.T) {
	calls := 0
	err := DoFunc(context.Background(), Policy{MaxAttempts: 2, Delay: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("once")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("DoFunc() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("attempts = %d, want 2", calls)
	}
}
