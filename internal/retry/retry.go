// Package retry provides a bounded, fixed-delay retry executor shared by
// every fallible remote call in the pipeline.
package retry

import (
	"context"
	"time"
)

// Policy configures bounded retries. One instance may be shared freely.
type Policy struct {
	// MaxAttempts is the total number of attempts, the first included.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Delay is the fixed pause between attempts. No backoff, no jitter.
	Delay time.Duration
	// OnRetry, when set, observes each failed attempt before the next one.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do runs op until it succeeds or the attempt budget is exhausted, then
// returns the last error. The inter-attempt sleep honours ctx so a
// cancelled job does not sit out its remaining delays.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, p.Delay)
		}

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// DoFunc runs an operation that returns only an error.
func DoFunc(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
