package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how webhook fetches are retried: exponential backoff from
// Base, doubling, capped at Cap, for at most MaxRetries extra attempts.
type RetryPolicy struct {
	MaxRetries uint64
	Base       time.Duration
	Cap        time.Duration
}

// DefaultRetryPolicy retries twice starting at 1s, capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Base: time.Second, Cap: 30 * time.Second}
}

func (p RetryPolicy) backoff() retry.Backoff {
	base, ceiling := p.Base, p.Cap
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = 30 * time.Second
	}
	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(ceiling, b)
	return retry.WithMaxRetries(p.MaxRetries, b)
}

// Do runs fn, retrying only failures that report themselves as retryable.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
