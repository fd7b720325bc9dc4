package provider

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
)

// MaxAttempts is the total number of tries made for a request that keeps
// failing at the transport level.
const MaxAttempts = 4

// Retry calls fn up to attempts times. Only transport failures are retried;
// any other error, or success, ends the loop immediately. When every attempt
// fails the last transport error is returned with Attempts set.
func Retry[T any](ctx context.Context, logger hclog.Logger, attempts int, fn func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransport(err) {
			return zero, err
		}

		lastErr = err
		logger.Debug("request failed", "attempt", attempt, "of", attempts, "error", err)
	}

	var pe *ProviderError
	if errors.As(lastErr, &pe) {
		pe.Attempts = attempts
	}
	return zero, lastErr
}
