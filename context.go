package resilient

import (
	"time"

	"github.com/google/uuid"
)

// snapshotLimit bounds request/response snapshots attached to error contexts
// so diagnostics never retain unbounded payloads.
const snapshotLimit = 2048

// ErrorContext is the structured metadata attached to a [ClassifiedError]:
// where the request was going, which attempt failed, and bounded payload
// snapshots for diagnostics. Once attached to a terminal error it must be
// treated as immutable.
type ErrorContext struct {
	// Endpoint is the logical target of the request.
	Endpoint string `json:"endpoint"`
	// Method is the operation verb.
	Method string `json:"method"`
	// Attempt is the 1-based attempt number this failure belongs to.
	Attempt int `json:"attempt"`
	// RequestSnapshot is a bounded copy of the request payload.
	RequestSnapshot []byte `json:"request_snapshot,omitempty"`
	// ResponseSnapshot is a bounded copy of the response payload, when a
	// response was received.
	ResponseSnapshot []byte `json:"response_snapshot,omitempty"`
	// Timestamp records when the attempt started.
	Timestamp time.Time `json:"timestamp"`
	// CorrelationID ties the failure to logs and telemetry downstream.
	CorrelationID string `json:"correlation_id"`
}

// newErrorContext builds the metadata for one attempt against spec.
func newErrorContext(spec RequestSpec, attempt int, clock Clock) *ErrorContext {
	return &ErrorContext{
		Endpoint:        spec.Endpoint,
		Method:          spec.Method,
		Attempt:         attempt,
		RequestSnapshot: snapshot(spec.Body),
		Timestamp:       clock.Now(),
		CorrelationID:   uuid.NewString(),
	}
}

// snapshot copies at most snapshotLimit bytes of b.
func snapshot(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}

	n := min(len(b), snapshotLimit)

	out := make([]byte, n)
	copy(out, b[:n])

	return out
}
