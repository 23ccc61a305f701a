package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// retryer runs a function under one strategy's retry schedule. The breaker
// is not consulted here; the registry accounts for the call as a whole.
type retryer struct {
	strategy   Strategy
	classifier *Classifier
}

// do runs fn with per-attempt timeouts and exponential backoff. Transient
// failures retry up to MaxAttempts; a permanent failure aborts immediately.
// onRetry is invoked before each backoff sleep. It returns the final error,
// its class, and the number of attempts made.
func (r *retryer) do(ctx context.Context, fn func(ctx context.Context) ([]byte, error), onRetry func(attempt int, err error)) ([]byte, Class, int, error) {
	var lastErr error

	for attempt := 1; attempt <= r.strategy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ClassPermanent, attempt - 1, ctx.Err()
		default:
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if r.strategy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.strategy.AttemptTimeout)
		}
		result, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, ClassTransient, attempt, nil
		}

		lastErr = err

		class := r.classifier.Classify(err)
		if class == ClassPermanent {
			return nil, ClassPermanent, attempt, err
		}

		if attempt == r.strategy.MaxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, ClassPermanent, attempt, ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}

	return nil, ClassTransient, r.strategy.MaxAttempts, lastErr
}

// backoff computes the delay after the given attempt: base*2^(attempt-1)
// capped at MaxDelay, with ±25% jitter when enabled.
func (r *retryer) backoff(attempt int) time.Duration {
	delay := float64(r.strategy.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(r.strategy.MaxDelay) {
		delay = float64(r.strategy.MaxDelay)
	}
	if r.strategy.Jitter {
		jitterRange := delay * 0.25
		delay += (rand.Float64() * 2 * jitterRange) - jitterRange
	}
	return time.Duration(delay)
}
