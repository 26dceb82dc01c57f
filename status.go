package resilient

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// StatusReporter and Registry
// ---------------------------------------------------------------------------.

type (
	// StatusReporter is implemented by [Client]. Keeping it an interface
	// lets hosts register their own composite reporters alongside clients.
	StatusReporter interface {
		// Name returns the reporter's name.
		Name() string
		// Status returns the current state of the reporter.
		Status() ClientStatus
	}

	// ClientStatus is the reportable state of one outbound client.
	ClientStatus struct {
		Name            string `json:"name"`
		LastFailureKind string `json:"last_failure_kind,omitempty"`
		InFlight        int64  `json:"in_flight"`
		Online          bool   `json:"online"`
		Healthy         bool   `json:"healthy"`
	}

	// LayerStatus is the result of snapshotting all registered reporters.
	LayerStatus struct {
		Clients []ClientStatus `json:"clients"`
		Ready   bool           `json:"ready"`
	}

	// Registry tracks StatusReporter instances and derives readiness.
	//
	// Pattern: Singleton — DefaultRegistry uses sync.OnceValue for safe lazy
	// init; explicit registries can be created for testing or multi-tenant
	// scenarios.
	Registry struct {
		reporters atomic.Pointer[[]StatusReporter]
		mu        sync.Mutex
	}
)

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}

	var empty []StatusReporter

	r.reporters.Store(&empty)

	return r
}

// Register adds a StatusReporter to the registry. This is typically called
// during startup by NewClient. It is safe for concurrent use but intended
// for initialization only.
func (r *Registry) Register(sr StatusReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.reporters.Load()
	// Copy-on-write so concurrent readers never observe a slice being
	// mutated underneath them.
	updated := make([]StatusReporter, len(old), len(old)+1)
	copy(updated, old)
	updated = append(updated, sr)
	r.reporters.Store(&updated)
}

// Snapshot iterates all registered reporters and builds a [LayerStatus].
// Ready is false if any registered client is unhealthy.
func (r *Registry) Snapshot() LayerStatus {
	reporters := *r.reporters.Load()

	status := LayerStatus{
		Ready:   true,
		Clients: make([]ClientStatus, 0, len(reporters)),
	}

	for _, sr := range reporters {
		cs := sr.Status()
		status.Clients = append(status.Clients, cs)

		if !cs.Healthy {
			status.Ready = false
		}
	}

	return status
}

// DefaultRegistry returns the package-level global registry, creating it on
// first call.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
