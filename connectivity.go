package resilient

import (
	"sync"
	"time"
)

// defaultDebounceWindow is the quiescence window applied to raw connectivity
// signals before a transition is accepted.
const defaultDebounceWindow = 500 * time.Millisecond

// Monitor tracks the process's online/offline signal. It exposes a
// current-state query plus a subscription mechanism for transitions, and
// debounces raw signal flapping so subscribers see at most one notification
// per quiescence window.
//
// The monitor is fed through [Monitor.SetOnline] by whatever platform signal
// the host application wires in. When no signal source is wired, the monitor
// stays optimistically online and never emits a transition — callers must not
// rely on transitions firing.
type Monitor struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	online  bool // settled (debounced) state
	raw     bool // latest raw signal
	pending Timer
	cancel  chan struct{} // releases the pending settle goroutine
	gen     uint64        // invalidates stale timer fires
	subs    map[int]func(online bool)
	nextSub int
}

// MonitorOption configures a [Monitor].
type MonitorOption func(*Monitor)

// WithDebounceWindow sets the quiescence window applied to raw signals.
// A window of 0 settles transitions immediately.
func WithDebounceWindow(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.window = d
	}
}

// WithMonitorClock sets the clock backing the debounce timers.
func WithMonitorClock(c Clock) MonitorOption {
	return func(m *Monitor) {
		m.clock = c
	}
}

// NewMonitor creates a monitor that is optimistically online until a signal
// source reports otherwise.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		clock:  RealClock{},
		window: defaultDebounceWindow,
		online: true,
		raw:    true,
		subs:   make(map[int]func(bool)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// IsOnline returns the current settled connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// OnTransition registers fn to be called after each settled transition with
// the new state. It returns an unsubscribe function. Callbacks run outside
// the monitor's lock, in the goroutine that settles the transition.
func (m *Monitor) OnTransition(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SetOnline feeds a raw platform connectivity signal into the monitor.
// A change of state only settles after the debounce window elapses without
// the raw signal flipping back; flapping within the window produces no
// transition at all.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()

	m.raw = online

	// Invalidate any pending settle and release its goroutine.
	m.gen++

	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}

	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}

	if m.raw == m.online {
		// Flapped back to the settled state within the window.
		m.mu.Unlock()
		return
	}

	if m.window <= 0 {
		m.settleLocked()
		return
	}

	gen := m.gen
	timer := m.clock.NewTimer(m.window)
	cancel := make(chan struct{})
	m.pending = timer
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		select {
		case <-timer.C():
			m.settleAfter(gen)
		case <-cancel:
		}
	}()
}

// settleAfter applies a pending transition if it was not invalidated by a
// newer raw signal.
func (m *Monitor) settleAfter(gen uint64) {
	m.mu.Lock()

	if gen != m.gen || m.raw == m.online {
		m.mu.Unlock()
		return
	}

	m.settleLocked()
}

// settleLocked commits the raw state and notifies subscribers. It is called
// with the lock held and releases it before invoking callbacks.
func (m *Monitor) settleLocked() {
	m.online = m.raw
	m.pending = nil
	m.cancel = nil
	state := m.online

	callbacks := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		callbacks = append(callbacks, fn)
	}

	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(state)
	}
}
