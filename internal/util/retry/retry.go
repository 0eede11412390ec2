package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/kubestrap/kubestrap/internal/sshx"
)

// Defaults for the retry policy.
const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 5 * time.Minute
	DefaultDelay          = 2 * time.Second
)

// Policy holds the retry configuration for one logical operation.
type Policy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	Delay          time.Duration
}

// DefaultPolicy returns the stock policy: 3 attempts, 5 minute per-attempt
// timeout, 2 second delay between attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		AttemptTimeout: DefaultAttemptTimeout,
		Delay:          DefaultDelay,
	}
}

// Option is a functional option for the retry policy.
type Option func(*Policy)

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		p.MaxAttempts = n
	}
}

// WithAttemptTimeout sets the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Policy) {
		p.AttemptTimeout = d
	}
}

// WithDelay sets the fixed delay between attempts.
func WithDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.Delay = d
	}
}

// WithPolicy replaces the whole policy at once.
func WithPolicy(policy Policy) Option {
	return func(p *Policy) {
		*p = policy
	}
}

// Operation is one retryable remote operation. Each invocation must start
// from scratch; the executor gives it a fresh per-attempt context.
type Operation func(ctx context.Context) sshx.Result

// Do runs op up to MaxAttempts times, sleeping the fixed delay between
// attempts and stopping at the first success. The successful Result, or the
// last failed one, is returned; on exhaustion the message also records the
// attempt count and the last underlying failure.
func Do(ctx context.Context, op Operation, opts ...Option) sshx.Result {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var last sshx.Result
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		last = runAttempt(ctx, op, p.AttemptTimeout)
		if last.Success {
			return last
		}

		if attempt < p.MaxAttempts {
			select {
			case <-ctx.Done():
				return sshx.Failure("aborted after %d attempt(s): %v", attempt, ctx.Err())
			case <-time.After(p.Delay):
			}
		}
	}

	msg := last.Message
	if msg == "" {
		msg = "unknown failure"
	}
	last.Message = fmt.Sprintf("failed after %d attempt(s): %s", p.MaxAttempts, msg)
	return last
}

// runAttempt executes one attempt under its own timeout context.
func runAttempt(ctx context.Context, op Operation, timeout time.Duration) sshx.Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return op(ctx)
}
