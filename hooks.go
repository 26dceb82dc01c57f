package resilient

import "time"

// Hooks holds optional callback functions for request lifecycle events. All
// fields are nil by default; callers set only the hooks they care about. Once
// constructed, a Hooks value must not be mutated — emit methods read the
// function fields without synchronisation, which is safe as long as the
// struct is read-only after initialisation.
//
// Pattern: Observer — decouples lifecycle event emission from consumers
// (logging, metrics, alerting) without the executor or scheduler knowing
// about observers.
type Hooks struct {
	// OnAttempt fires before each executor invocation (1-indexed).
	OnAttempt func(attempt int)
	// OnRetry fires after a retryable failure, before the backoff wait.
	OnRetry func(attempt int, err *ClassifiedError, delay time.Duration)
	// OnTimeout fires when an attempt exceeds its configured timeout.
	OnTimeout func()
	// OnOffline fires when a call short-circuits because the connectivity
	// monitor reports offline.
	OnOffline func()
	// OnGiveUp fires when the scheduler returns a terminal classified error.
	OnGiveUp func(err *ClassifiedError, attempts int)
	// OnFallback fires when a client serves a fallback in place of a
	// terminal error.
	OnFallback func(err *ClassifiedError)
}

func (h *Hooks) emitAttempt(attempt int) {
	if h.OnAttempt != nil {
		h.OnAttempt(attempt)
	}
}

func (h *Hooks) emitRetry(attempt int, err *ClassifiedError, delay time.Duration) {
	if h.OnRetry != nil {
		h.OnRetry(attempt, err, delay)
	}
}

func (h *Hooks) emitTimeout() {
	if h.OnTimeout != nil {
		h.OnTimeout()
	}
}

func (h *Hooks) emitOffline() {
	if h.OnOffline != nil {
		h.OnOffline()
	}
}

func (h *Hooks) emitGiveUp(err *ClassifiedError, attempts int) {
	if h.OnGiveUp != nil {
		h.OnGiveUp(err, attempts)
	}
}

func (h *Hooks) emitFallback(err *ClassifiedError) {
	if h.OnFallback != nil {
		h.OnFallback(err)
	}
}
