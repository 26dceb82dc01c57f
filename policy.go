package resilient

import "time"

// RetryPolicy is the caller-supplied retry configuration for one logical
// request. A policy is a plain value, immutable for the duration of the call;
// concurrent calls sharing the same policy never share attempt counters —
// each [Scheduler.Run] owns its own.
type RetryPolicy struct {
	// MaxAttempts is the attempt ceiling. 1 performs exactly one attempt and
	// never waits; values below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay seeds the default exponential-jitter backoff. Ignored when
	// Strategy is set.
	BaseDelay time.Duration
	// AttemptTimeout bounds each individual transport call. 0 means no
	// per-attempt timeout.
	AttemptTimeout time.Duration
	// TotalTimeout bounds the wall-clock cost of the whole logical request:
	// all attempts plus all backoff delays. Exceeding it during a wait fails
	// the call with the last classified error rather than a fresh timeout.
	// 0 means no ceiling.
	TotalTimeout time.Duration
	// Strategy overrides the backoff algorithm. When nil, the scheduler uses
	// [ExponentialJitterBackoff] seeded with BaseDelay.
	Strategy BackoffStrategy
	// RetryIf, when set, overrides the classified error's derived retry
	// eligibility for this policy. The attempt ceiling and the offline
	// short-circuit still apply.
	RetryIf func(err *ClassifiedError) bool
}

// DefaultPolicy provides sensible defaults for interactive requests.
var DefaultPolicy = RetryPolicy{
	MaxAttempts:    3,
	BaseDelay:      100 * time.Millisecond,
	AttemptTimeout: 10 * time.Second,
	TotalTimeout:   30 * time.Second,
}

// withDefaults normalizes the policy without mutating the caller's value.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	if p.Strategy == nil {
		p.Strategy = ExponentialJitterBackoff(p.BaseDelay)
	}

	return p
}
