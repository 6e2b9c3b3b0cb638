package stage

import (
	"context"
	"math/rand"
	"time"

	"github.com/specsmith/specsmith/internal/errors"
)

// Retry defaults. Backoff is exponential with jitter: base * 2^attempt plus
// up to maxJitterPercent of the computed delay.
const (
	DefaultMaxRetries       = 2
	DefaultBaseDelay        = 2 * time.Second
	DefaultMaxJitterPercent = 25
)

// RetryClient wraps a Client with transport-level retries. Only errors whose
// category is retryable (rate limit, timeout, network, provider failure) are
// retried; validation and unknown errors propagate immediately. Business
// logic above this layer never retries; a failed stage halts the round.
type RetryClient struct {
	inner            Client
	maxRetries       int
	baseDelay        time.Duration
	maxJitterPercent int
	onRetry          func(name Name, attempt int, delay time.Duration, err error)
}

// RetryOption customizes a RetryClient.
type RetryOption func(*RetryClient)

// WithMaxRetries sets how many additional attempts follow a failure.
func WithMaxRetries(n int) RetryOption {
	return func(c *RetryClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBaseDelay sets the backoff base delay.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(c *RetryClient) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithOnRetry registers a callback invoked before each retry sleep.
func WithOnRetry(fn func(name Name, attempt int, delay time.Duration, err error)) RetryOption {
	return func(c *RetryClient) {
		c.onRetry = fn
	}
}

// NewRetryClient wraps inner with retry behavior.
func NewRetryClient(inner Client, opts ...RetryOption) *RetryClient {
	c := &RetryClient{
		inner:            inner,
		maxRetries:       DefaultMaxRetries,
		baseDelay:        DefaultBaseDelay,
		maxJitterPercent: DefaultMaxJitterPercent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke calls the inner client, retrying transient failures with
// exponential backoff. The final error is returned unwrapped so its message
// still categorizes correctly.
func (c *RetryClient) Invoke(ctx context.Context, name Name, req Request) (*Output, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		out, err := c.inner.Invoke(ctx, name, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt >= c.maxRetries {
			return nil, lastErr
		}

		delay := backoffDelay(c.baseDelay, attempt, c.maxJitterPercent)
		if c.onRetry != nil {
			c.onRetry(name, attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(delay):
		}
	}
}

// backoffDelay computes base * 2^attempt plus jitter.
func backoffDelay(base time.Duration, attempt int, maxJitterPercent int) time.Duration {
	delay := base * time.Duration(1<<attempt)
	if maxJitterPercent > 0 {
		jitterRange := float64(delay) * float64(maxJitterPercent) / 100.0
		delay += time.Duration(rand.Float64() * jitterRange)
	}
	return delay
}
