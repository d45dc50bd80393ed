package database

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryPolicy bounds Retry.
type RetryPolicy struct {
	MaxRetries uint64
	Backoff    time.Duration
	MaxBackoff time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxRetries: 2, Backoff: 50 * time.Millisecond, MaxBackoff: time.Second}

// Retry runs fn until it succeeds, the policy is exhausted or it fails with
// an error that retrying cannot fix: an integrity violation or the
// cancellation of ctx.
func Retry(ctx context.Context, logger *zap.Logger, policy RetryPolicy, fn func(context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	backoff := retry.NewExponential(policy.Backoff)
	if policy.MaxBackoff > 0 {
		backoff = retry.WithCappedDuration(policy.MaxBackoff, backoff)
	}
	backoff = retry.WithMaxRetries(policy.MaxRetries, backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || IsIntegrityViolation(err) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Warn("database retry", zap.Error(err), zap.Int("attempt", attempt))
		return retry.RetryableError(err)
	})
}
