package resilient

import (
	"log/slog"

	json "github.com/goccy/go-json"
)

// FailureRecord is the structured record emitted to a [TelemetrySink] for
// each terminal [ClassifiedError]. Unlike user notifications it keeps the
// developer-facing message, including the raw cause, for offline diagnostics.
type FailureRecord struct {
	Message        string           `json:"message"`
	Kind           Kind             `json:"kind"`
	StatusCode     int              `json:"status_code,omitempty"`
	StatusCategory StatusCategory   `json:"status_category"`
	Strategy       RecoveryStrategy `json:"recovery_strategy"`
	Retryable      bool             `json:"retryable"`
	Context        *ErrorContext    `json:"context,omitempty"`
	// Attempts is the per-attempt history of the failed request. It is
	// populated by the scheduler; NewFailureRecord leaves it empty.
	Attempts []AttemptRecord `json:"attempts,omitempty"`
}

// NewFailureRecord flattens a terminal classified error into a record.
func NewFailureRecord(ce *ClassifiedError) FailureRecord {
	return FailureRecord{
		Message:        ce.Error(),
		Kind:           ce.Kind,
		StatusCode:     ce.StatusCode,
		StatusCategory: ce.StatusCategory(),
		Strategy:       ce.Strategy,
		Retryable:      ce.Retryable,
		Context:        ce.Context,
	}
}

// EncodeJSON serialises the record for shipping or spooling.
func (r FailureRecord) EncodeJSON() ([]byte, error) {
	return json.Marshal(r)
}

// TelemetrySink receives one structured record per terminal classified
// error. Implementations must be safe for concurrent use.
type TelemetrySink interface {
	Record(rec FailureRecord)
}

// TelemetryFunc adapts an ordinary function into a [TelemetrySink].
type TelemetryFunc func(rec FailureRecord)

// Record calls the underlying function.
func (f TelemetryFunc) Record(rec FailureRecord) { f(rec) }

// LogSink is a [TelemetrySink] that writes failure records through a
// structured logger. The zero value logs via [slog.Default].
type LogSink struct {
	Logger *slog.Logger
}

// Record logs the failure with its classification attributes.
func (s LogSink) Record(rec FailureRecord) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		slog.String("kind", rec.Kind.String()),
		slog.String("recovery_strategy", rec.Strategy.String()),
		slog.Bool("retryable", rec.Retryable),
	}

	if rec.StatusCode != 0 {
		attrs = append(attrs,
			slog.Int("status_code", rec.StatusCode),
			slog.String("status_category", rec.StatusCategory.String()),
		)
	}

	if rec.Context != nil {
		attrs = append(attrs,
			slog.String("endpoint", rec.Context.Endpoint),
			slog.String("method", rec.Context.Method),
			slog.Int("attempt", rec.Context.Attempt),
			slog.String("correlation_id", rec.Context.CorrelationID),
		)
	}

	logger.Error(rec.Message, attrs...)
}
