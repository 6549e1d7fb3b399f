// Package retry provides the single retry policy shared by every remote
// call site: capped-exponential backoff with a bounded attempt count.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default policy values. The delay doubles per attempt and caps at
// DefaultMaxDelay, so a long outage costs one capped wait per retry rather
// than an unbounded backoff.
const (
	DefaultMaxRetries  = 30
	DefaultDelay       = 1 * time.Second
	DefaultMaxDelay    = 32 * time.Second
	DefaultBackoffMult = 2.0
)

// ErrTerminal wraps errors that must not be retried. Use Terminal to mark
// "not found / not yet confirmed" outcomes so they surface immediately.
var ErrTerminal = errors.New("terminal error")

// Terminal marks err as not retryable.
func Terminal(err error) error {
	return fmt.Errorf("%w: %w", ErrTerminal, err)
}

// Policy describes one backoff schedule.
type Policy struct {
	MaxRetries  int           // additional attempts after the first
	Delay       time.Duration // initial backoff
	MaxDelay    time.Duration // backoff cap
	BackoffMult float64       // multiplier per attempt; 1.0 gives fixed backoff
}

// DefaultPolicy returns the policy used by the RPC client unless overridden.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:  DefaultMaxRetries,
		Delay:       DefaultDelay,
		MaxDelay:    DefaultMaxDelay,
		BackoffMult: DefaultBackoffMult,
	}
}

// Do runs op up to p.MaxRetries+1 times, sleeping between attempts.
// It stops early on ctx cancellation or when op returns an error wrapped
// with Terminal. The last error is returned after exhaustion.
func (p Policy) Do(ctx context.Context, op func() error) error {
	delay := p.Delay
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.BackoffMult)
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTerminal) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
