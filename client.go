package resilient

import (
	"context"
	"errors"
	"sync/atomic"
)

// Client bundles a transport, a connectivity monitor, hooks and sinks into a
// ready-to-use request layer. [Client.Run] is the public entry point for one
// logical request; [Classify] remains available separately for callers that
// perform their own transport call and only want classification.
//
// Pattern: Functional Options — collaborators are wired via composable
// option functions, keeping the constructor signature stable.
type Client struct {
	name     string
	monitor  *Monitor
	hooks    Hooks
	clock    Clock
	fallback func(err *ClassifiedError) (*Response, error)
	sched    *Scheduler

	inflight atomic.Int64
	lastKind atomic.Int32 // Kind+1, 0 while no failure seen
}

// clientSetup collects configuration during NewClient.
type clientSetup struct {
	monitor   *Monitor
	hooks     Hooks
	clock     Clock
	telemetry TelemetrySink
	notifier  NotificationSink
	fallback  func(err *ClassifiedError) (*Response, error)
	registry  *Registry
}

// Option configures a [Client].
type Option func(*clientSetup)

// WithMonitor wires a connectivity monitor into the client. Without one the
// client behaves as if permanently online.
func WithMonitor(m *Monitor) Option {
	return func(s *clientSetup) { s.monitor = m }
}

// WithHooks sets the lifecycle hooks for the client's executor and scheduler.
func WithHooks(h Hooks) Option {
	return func(s *clientSetup) { s.hooks = h }
}

// WithClock sets the clock used for backoff waits and timestamps.
func WithClock(c Clock) Option {
	return func(s *clientSetup) { s.clock = c }
}

// WithTelemetry sets the sink receiving a structured record per terminal
// classified error.
func WithTelemetry(sink TelemetrySink) Option {
	return func(s *clientSetup) { s.telemetry = sink }
}

// WithNotifier sets the sink receiving user-facing failure summaries.
func WithNotifier(sink NotificationSink) Option {
	return func(s *clientSetup) { s.notifier = sink }
}

// WithFallback sets a function invoked with the terminal classified error in
// place of returning it. This gives the FallbackData recovery strategy a
// concrete hook without the layer assuming any cache exists.
func WithFallback(fn func(err *ClassifiedError) (*Response, error)) Option {
	return func(s *clientSetup) { s.fallback = fn }
}

// WithRegistry sets an explicit registry for the client to register with.
// If not provided, named clients auto-register with [DefaultRegistry].
func WithRegistry(reg *Registry) Option {
	return func(s *clientSetup) { s.registry = reg }
}

// NewClient creates a client over transport. Named clients register with a
// [Registry] so readiness endpoints can report on them; an empty name skips
// registration.
func NewClient(name string, transport Transport, opts ...Option) *Client {
	var setup clientSetup

	for _, opt := range opts {
		opt(&setup)
	}

	if setup.clock == nil {
		setup.clock = RealClock{}
	}

	c := &Client{
		name:     name,
		monitor:  setup.monitor,
		hooks:    setup.hooks,
		clock:    setup.clock,
		fallback: setup.fallback,
	}

	exec := NewExecutor(transport, setup.monitor, &c.hooks)
	exec.clock = setup.clock

	c.sched = NewScheduler(exec, setup.monitor, &c.hooks, setup.telemetry, setup.notifier)
	c.sched.clock = setup.clock

	if name != "" {
		reg := setup.registry
		if reg == nil {
			reg = DefaultRegistry()
		}

		reg.Register(c)
	}

	return c
}

// Name returns the client's name.
func (c *Client) Name() string { return c.name }

// Run executes one logical request under policy through the retry scheduler.
// On terminal classified failure the configured fallback, if any, is
// consulted before the error is returned.
func (c *Client) Run(ctx context.Context, spec RequestSpec, policy RetryPolicy) (*Response, error) {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	resp, err := c.sched.Run(ctx, spec, policy)
	if err == nil {
		return resp, nil
	}

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		return nil, err
	}

	c.lastKind.Store(int32(ce.Kind) + 1)

	if c.fallback != nil {
		c.hooks.emitFallback(ce)
		return c.fallback(ce)
	}

	return nil, ce
}

// Status reports the client's current state for readiness endpoints.
func (c *Client) Status() ClientStatus {
	online := true
	if c.monitor != nil {
		online = c.monitor.IsOnline()
	}

	status := ClientStatus{
		Name:     c.name,
		Online:   online,
		InFlight: c.inflight.Load(),
		Healthy:  online,
	}

	if last := c.lastKind.Load(); last > 0 {
		status.LastFailureKind = Kind(last - 1).String()
	}

	return status
}

// Do executes a single request with an anonymous client. It is a convenience
// for one-shot calls that do not need registration, fallbacks or reuse.
func Do(ctx context.Context, transport Transport, spec RequestSpec, policy RetryPolicy, opts ...Option) (*Response, error) {
	c := NewClient("", transport, opts...)
	return c.Run(ctx, spec, policy)
}
