package resilient

import (
	"context"
	"time"
)

// Executor issues one bounded attempt of a request: it applies the attempt
// timeout via a derived context, awaits the transport outcome, and hands any
// failure to [Classify]. It performs exactly one underlying transport call
// per invocation and never retries internally — orchestration is the
// [Scheduler]'s responsibility.
type Executor struct {
	transport Transport
	monitor   *Monitor
	hooks     *Hooks
	clock     Clock
}

// NewExecutor creates an executor over the given transport. monitor and
// hooks may be nil; a nil monitor disables the offline short-circuit.
func NewExecutor(transport Transport, monitor *Monitor, hooks *Hooks) *Executor {
	if hooks == nil {
		hooks = &Hooks{}
	}

	return &Executor{
		transport: transport,
		monitor:   monitor,
		hooks:     hooks,
		clock:     RealClock{},
	}
}

// Execute performs one attempt of spec bounded by timeout. On success the
// raw response is returned unclassified; classification only applies to
// failures. A timeout of 0 leaves the attempt bounded only by ctx.
func (e *Executor) Execute(ctx context.Context, spec RequestSpec, timeout time.Duration) (*Response, error) {
	return e.execute(ctx, spec, timeout, newErrorContext(spec, 1, e.clock))
}

// execute is the scheduler-facing variant carrying the attempt's error
// context. The possible outcomes are: a successful *Response, a
// *ClassifiedError, or the raw ctx.Err() when the caller cancelled —
// caller cancellation keeps its context error identity so that abandoning
// a request is distinguishable from the request failing.
func (e *Executor) execute(ctx context.Context, spec RequestSpec, timeout time.Duration, rctx *ErrorContext) (*Response, error) {
	// If the caller already gave up, do not touch the transport.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Offline short-circuit: classify without consuming a transport call.
	if e.monitor != nil && !e.monitor.IsOnline() {
		e.hooks.emitOffline()
		return nil, Classify(ErrOffline, rctx)
	}

	attemptCtx := ctx

	var cancel context.CancelFunc
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		resp *Response
		err  error
	}

	ch := make(chan outcome, 1)

	go func() {
		resp, err := e.transport.Send(attemptCtx, spec)
		ch <- outcome{resp: resp, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if ctx.Err() != nil {
				// The caller cancelled while the call was in flight.
				return nil, ctx.Err()
			}

			if attemptCtx.Err() == context.DeadlineExceeded {
				e.hooks.emitTimeout()
				return nil, Classify(context.DeadlineExceeded, rctx)
			}

			return nil, Classify(out.err, rctx)
		}

		return e.finish(out.resp, rctx)

	case <-attemptCtx.Done():
		// The transport call is released through attemptCtx; the goroutine
		// drains into the buffered channel and is collected.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		e.hooks.emitTimeout()

		return nil, Classify(context.DeadlineExceeded, rctx)
	}
}

// finish routes non-success responses through the classifier and passes
// successes through untouched.
func (e *Executor) finish(resp *Response, rctx *ErrorContext) (*Response, error) {
	if resp == nil {
		return nil, Classify(nil, rctx)
	}

	if resp.StatusCode < 400 {
		return resp, nil
	}

	rctx.ResponseSnapshot = snapshot(resp.Body)

	se := &StatusError{
		StatusCode:  resp.StatusCode,
		Body:        snapshot(resp.Body),
		FieldErrors: extractFieldErrors(resp.Body),
	}

	return nil, Classify(se, rctx)
}
