// Package metrics provides observability for the transfer module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks transfer submissions and the verification gate.
type Metrics struct {
	TransfersSubmitted   prometheus.Counter
	TransfersSettled     prometheus.Counter
	VerificationOutcomes *prometheus.CounterVec
	VerificationDuration prometheus.Histogram
}

// New creates a Metrics instance with all transfer module metrics registered.
func New() *Metrics {
	return &Metrics{
		TransfersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultpay_transfers_submitted_total",
			Help: "Total number of transfers submitted",
		}),
		TransfersSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultpay_transfers_settled_total",
			Help: "Total number of transfers settled by the background worker",
		}),
		VerificationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultpay_verification_outcomes_total",
			Help: "Verification attempts by tier and outcome",
		}, []string{"tier", "outcome"}),
		VerificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaultpay_verification_duration_seconds",
			Help:    "Duration of verification attempts, session request to terminal outcome",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// IncrementSubmitted records a submitted transfer.
func (m *Metrics) IncrementSubmitted() {
	m.TransfersSubmitted.Inc()
}

// IncrementSettled records a transfer flipped to completed.
func (m *Metrics) IncrementSettled() {
	m.TransfersSettled.Inc()
}

// ObserveVerification records one verification attempt.
// Call with time.Now() from the start of the attempt.
func (m *Metrics) ObserveVerification(tier, outcome string, start time.Time) {
	m.VerificationOutcomes.WithLabelValues(tier, outcome).Inc()
	m.VerificationDuration.Observe(time.Since(start).Seconds())
}
