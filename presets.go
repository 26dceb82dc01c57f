package resilient

import "time"

// Pattern: Factory Function — each preset produces a ready-made policy for a
// common use case, avoiding boilerplate configuration.

// InteractivePolicy returns a policy suited to user-facing requests: short
// per-attempt budget, few attempts, tight overall ceiling so the UI never
// hangs on a stuck call.
func InteractivePolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      100 * time.Millisecond,
		AttemptTimeout: 5 * time.Second,
		TotalTimeout:   15 * time.Second,
	}
}

// BackgroundSyncPolicy returns a policy suited to background synchronisation:
// generous attempt ceiling and backoff envelope, since nobody is watching.
func BackgroundSyncPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    6,
		BaseDelay:      500 * time.Millisecond,
		AttemptTimeout: 30 * time.Second,
		TotalTimeout:   5 * time.Minute,
	}
}

// OneShotPolicy returns a policy that performs exactly one attempt and never
// waits, for fire-and-forget operations where retrying would be wrong.
func OneShotPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    1,
		AttemptTimeout: 10 * time.Second,
	}
}
