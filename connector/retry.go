package connector

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const defaultBaseDelay = time.Second

func connectWithRetry(ctx context.Context, opts *RetryConfig, logger *zap.Logger, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	if opts == nil || opts.MaxRetries == 0 {
		return connectFn(ctx)
	}

	delay := opts.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	backoff := retry.NewExponential(delay)
	if opts.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(opts.MaxDelay, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(opts.MaxRetries), backoff)

	var conn Connection
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		c, err := connectFn(ctx)
		if err != nil {
			logger.Warn("connect failed", zap.Error(err), zap.Int("attempt", attempt))
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}
