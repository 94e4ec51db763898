package llmcap

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures WithBackoff. MaxAttempts defaults to 3 (the
// spec's default), matching the corpus's "exponential backoff + jitter,
// default 3 attempts" retry convention.
type RetryConfig struct {
	MaxAttempts int
}

func (c RetryConfig) attempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

// WithBackoff retries fn on transient-classified errors using exponential
// backoff with jitter, up to cfg.MaxAttempts. Permanent and
// context-length-exceeded errors are returned immediately without retry.
func WithBackoff(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var policy backoff.BackOff = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.attempts()-1))
	policy = backoff.WithContext(policy, ctx)

	return backoff.Retry(func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
