package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryConfig controls the retry executor.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Timer overrides the wait primitive; nil uses real timers.
	Timer backoff.Timer
	// OnRetry is called before each wait with the failed attempt number (1-based).
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryConfig matches the interviewer's upstream budget.
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  2 * time.Second,
}

// WorstCaseWait is the sum of every backoff wait when all attempts are throttled:
// BaseDelay * (2^(MaxRetries+1) - 1). Gateway latency per attempt is extra.
func (rc RetryConfig) WorstCaseWait() time.Duration {
	if rc.MaxRetries < 0 {
		return 0
	}
	factor := math.Pow(2, float64(rc.MaxRetries+1)) - 1
	return time.Duration(float64(rc.BaseDelay) * factor)
}

// newBackOff builds a zero-jitter exponential schedule: BaseDelay * 2^attempt.
func (rc RetryConfig) newBackOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = rc.BaseDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxInterval = time.Duration(math.MaxInt64)
	expo.MaxElapsedTime = 0

	maxRetries := rc.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxRetries)), ctx)
}

// RetryDo runs op, retrying only rate-limited failures with exponential backoff.
// Any other failure is returned immediately wrapped in ErrFatal; a rate limit
// that outlives MaxRetries, or whose backoff is cut short by the context
// deadline, is returned wrapped in ErrRateLimited. op is invoked at most
// MaxRetries+1 times.
func RetryDo[T any](ctx context.Context, rc RetryConfig, op func() (T, error)) (T, error) {
	var lastErr error
	attempt := 0

	wrapped := func() (T, error) {
		attempt++
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRateLimited(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("llm rate limited, retrying",
			"attempt", attempt,
			"max_retries", rc.MaxRetries,
			"wait", wait,
			"error", err,
		)
		if rc.OnRetry != nil {
			rc.OnRetry(attempt, wait, err)
		}
	}

	result, err := backoff.RetryNotifyWithTimerAndData(wrapped, rc.newBackOff(ctx), notify, rc.Timer)
	if err == nil {
		return result, nil
	}

	var zero T
	if ctx.Err() != nil && err == ctx.Err() {
		// A deadline that lands inside the backoff is still a throttled turn.
		if errors.Is(err, context.DeadlineExceeded) && IsRateLimited(lastErr) {
			return zero, fmt.Errorf("%w after %d attempts, %w: %w", ErrRateLimited, attempt, err, lastErr)
		}
		return zero, fmt.Errorf("%w: %w", ErrFatal, err)
	}
	if IsRateLimited(lastErr) {
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempt, lastErr)
	}
	return zero, fmt.Errorf("%w: %w", ErrFatal, err)
}
