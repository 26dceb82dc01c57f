package resilient

import (
	"context"
	"errors"
	"time"
)

// AttemptRecord captures one failed attempt of a logical request. The
// scheduler accumulates records across a [Scheduler.Run] call and attaches
// them to the terminal [FailureRecord] as the request's attempt history.
type AttemptRecord struct {
	// Attempt is the 1-based attempt number.
	Attempt int `json:"attempt"`
	// Start is when the attempt was issued.
	Start time.Time `json:"start"`
	// Delay is the backoff applied before this attempt (0 for the first).
	Delay time.Duration `json:"delay"`
	// Kind is the classified outcome of the attempt.
	Kind Kind `json:"kind"`
	// StatusCode is the received status, 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`
}

// Scheduler orchestrates zero or more additional attempts through an
// [Executor], applying exponential backoff with jitter, bounded by the
// policy's attempt ceiling, the classified error's retry eligibility and the
// total-timeout ceiling. It consults the connectivity [Monitor] to
// short-circuit retries while offline.
//
// Each call into [Scheduler.Run] is an independent unit of work: attempts
// within one call are strictly sequential, while separate calls proceed
// concurrently with no shared mutable state beyond the read-only policy and
// the monitor.
type Scheduler struct {
	exec      *Executor
	monitor   *Monitor
	hooks     *Hooks
	clock     Clock
	telemetry TelemetrySink
	notifier  NotificationSink
}

// NewScheduler creates a scheduler over exec. monitor, hooks and both sinks
// may be nil.
func NewScheduler(exec *Executor, monitor *Monitor, hooks *Hooks, telemetry TelemetrySink, notifier NotificationSink) *Scheduler {
	if hooks == nil {
		hooks = &Hooks{}
	}

	return &Scheduler{
		exec:      exec,
		monitor:   monitor,
		hooks:     hooks,
		clock:     RealClock{},
		telemetry: telemetry,
		notifier:  notifier,
	}
}

// Run executes spec under policy until it succeeds, exhausts its attempts,
// fails non-retryably, hits the total-timeout ceiling, or the caller cancels
// ctx. A terminal classified failure is reported to the telemetry and
// notification sinks before being returned; caller cancellation returns the
// raw context error.
func (s *Scheduler) Run(ctx context.Context, spec RequestSpec, policy RetryPolicy) (*Response, error) {
	policy = policy.withDefaults()

	start := s.clock.Now()
	records := make([]AttemptRecord, 0, policy.MaxAttempts)

	var (
		lastErr *ClassifiedError
		delay   time.Duration
	)

attempts:
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		// Attempting.
		rctx := newErrorContext(spec, attempt+1, s.clock)
		s.hooks.emitAttempt(attempt + 1)

		record := AttemptRecord{
			Attempt: attempt + 1,
			Start:   s.clock.Now(),
			Delay:   delay,
		}

		resp, err := s.exec.execute(ctx, spec, policy.AttemptTimeout, rctx)
		if err == nil {
			// Done.
			return resp, nil
		}

		var ce *ClassifiedError
		if !errors.As(err, &ce) {
			// Caller cancellation: propagate the context error untouched.
			return nil, err
		}

		record.Kind = ce.Kind
		record.StatusCode = ce.StatusCode
		records = append(records, record)
		lastErr = ce

		// Evaluating.
		if attempt == policy.MaxAttempts-1 {
			break
		}

		if !s.shouldRetry(ce, policy) {
			break
		}

		// Waiting.
		delay = policy.Strategy.Delay(attempt)

		wait := delay
		ceilingHit := false

		if policy.TotalTimeout > 0 {
			remaining := policy.TotalTimeout - s.clock.Since(start)
			if remaining <= 0 {
				break
			}

			if wait > remaining {
				// The ceiling bounds wall-clock cost; it does not
				// reclassify the failure.
				wait = remaining
				ceilingHit = true
			}
		}

		s.hooks.emitRetry(attempt+1, ce, wait)

		timer := s.clock.NewTimer(wait)
		select {
		case <-timer.C():
			if ceilingHit {
				break attempts
			}
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	// Failed: terminal.
	s.reportFailure(lastErr, records)

	return nil, lastErr
}

// shouldRetry applies retry eligibility, the policy override, and the
// offline short-circuit.
func (s *Scheduler) shouldRetry(ce *ClassifiedError, policy RetryPolicy) bool {
	retryable := ce.Retryable
	if policy.RetryIf != nil {
		retryable = policy.RetryIf(ce)
	}

	if !retryable {
		return false
	}

	// While offline, only Offline-classified failures keep waiting for
	// connectivity; anything else fails immediately.
	if s.monitor != nil && !s.monitor.IsOnline() && ce.Kind != KindOffline {
		return false
	}

	return true
}

// reportFailure fans a terminal classified error out to the configured
// collaborators. Telemetry receives the raw cause and the full attempt
// history; the notification sink receives the fixed user-facing message for
// the kind.
func (s *Scheduler) reportFailure(ce *ClassifiedError, records []AttemptRecord) {
	if ce == nil {
		return
	}

	s.hooks.emitGiveUp(ce, len(records))

	if s.telemetry != nil {
		rec := NewFailureRecord(ce)
		rec.Attempts = records
		s.telemetry.Record(rec)
	}

	if s.notifier != nil {
		s.notifier.Notify(ce, UserMessage(ce.Kind))
	}
}
