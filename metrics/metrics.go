// Package metrics provides a Prometheus-backed telemetry sink for the
// resilient request layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	resilient "github.com/DaiyamondoSei/astral-venture-sub006"
)

// Sink counts terminal request failures by kind and recovery strategy and
// observes how many attempts each failed request consumed.
type Sink struct {
	failures *prometheus.CounterVec
	attempts prometheus.Histogram
}

// compile-time guarantee that *Sink implements resilient.TelemetrySink
var _ resilient.TelemetrySink = (*Sink)(nil)

// NewSink creates a Sink and registers its collectors with reg. A nil reg
// falls back to the default Prometheus registerer.
func NewSink(reg prometheus.Registerer) *Sink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &Sink{
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbound_request_failures_total",
				Help: "Terminal classified request failures by kind and recovery strategy.",
			},
			[]string{"kind", "strategy"},
		),
		attempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outbound_request_failure_attempts",
				Help:    "Attempts consumed by requests that ultimately failed.",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 10},
			},
		),
	}

	reg.MustRegister(s.failures, s.attempts)

	return s
}

// Record implements [resilient.TelemetrySink].
func (s *Sink) Record(rec resilient.FailureRecord) {
	s.failures.WithLabelValues(rec.Kind.String(), rec.Strategy.String()).Inc()

	if rec.Context != nil && rec.Context.Attempt > 0 {
		s.attempts.Observe(float64(rec.Context.Attempt))
	}
}
