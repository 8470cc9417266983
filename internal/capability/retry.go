package capability

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"
)

// Retry policy defaults for the external agent role. Internal workers are
// assumed co-located and reliable; their failures are not retried.
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 250 * time.Millisecond
	DefaultMaxBackoff  = 5 * time.Second
)

// RetryPolicy controls how the Retryer re-attempts transient failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy returns the policy used for the external agent role.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// Retryer wraps a Caller with exponential backoff and jitter. Only transient
// failure classes (timeout, connection refused, 5xx) are retried; rejections
// and malformed messages return immediately.
type Retryer struct {
	inner  Caller
	policy RetryPolicy
	// sleep is replaceable in tests to avoid real backoff waits.
	sleep func(context.Context, time.Duration) error
}

// NewRetryer wraps inner with the given retry policy.
func NewRetryer(inner Caller, policy RetryPolicy) *Retryer {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.BaseBackoff <= 0 {
		policy.BaseBackoff = DefaultBaseBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = DefaultMaxBackoff
	}
	return &Retryer{inner: inner, policy: policy, sleep: sleepCtx}
}

// Call attempts the inner call up to MaxAttempts times. The last error is
// returned when all attempts fail.
func (r *Retryer) Call(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		result, err := r.inner.Call(ctx, action, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !Transient(err) {
			return nil, err
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		log.Printf("[capability] transient failure on %s (attempt %d/%d), retrying in %v: %v",
			action, attempt, r.policy.MaxAttempts, delay, err)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("retry aborted for %s: %w", action, err)
		}
	}
	return nil, fmt.Errorf("all %d attempts failed for %s: %w", r.policy.MaxAttempts, action, lastErr)
}

// backoff computes the delay before the next attempt: exponential in the
// attempt number with up to 50% random jitter, capped at MaxBackoff.
func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.policy.BaseBackoff << (attempt - 1)
	if delay > r.policy.MaxBackoff {
		delay = r.policy.MaxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
