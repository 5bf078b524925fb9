// Package retry provides a bounded retry-with-backoff wrapper for operations
// that fail transiently.
//
// The policy is applied explicitly at call sites; nothing wraps operations
// implicitly. Errors rejected by the Retryable predicate propagate immediately.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation should be retried.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration
	// Multiplier scales the delay after each failed attempt. Values below 1
	// are treated as 1 (constant delay).
	Multiplier float64
	// MaxDelay caps the per-attempt delay when positive.
	MaxDelay time.Duration
	// Retryable decides whether an error qualifies for another attempt. A nil
	// predicate retries every error.
	Retryable func(error) bool
	// Sleep overrides how delays are performed. Tests inject a recorder here.
	Sleep func(context.Context, time.Duration) error
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func (p Policy) delay(attempt int) time.Duration {
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do invokes op until it succeeds, the policy's attempts are exhausted, the
// error is not retryable, or the context is cancelled. On exhaustion the last
// error is returned wrapped with the attempt count.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	attempts := policy.attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !policy.retryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := policy.sleep(ctx, policy.delay(attempt)); sleepErr != nil {
			return sleepErr
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// DoValue is Do for operations that produce a value alongside the error.
func DoValue[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, policy, func(ctx context.Context) error {
		value, opErr := op(ctx)
		if opErr != nil {
			return opErr
		}
		result = value
		return nil
	})
	return result, err
}
