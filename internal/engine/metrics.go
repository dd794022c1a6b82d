package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics captures threshold evaluation activity.
type Metrics struct {
	evaluations *prometheus.CounterVec
	transitions *prometheus.CounterVec
	persistErrs *prometheus.CounterVec
	live        prometheus.Gauge
}

// NewMetrics creates the tracker metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royaltysplit",
			Name:      "conditional_evaluations_total",
			Help:      "Observations evaluated against pending conditional splits.",
		}, []string{"condition_type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royaltysplit",
			Name:      "conditional_transitions_total",
			Help:      "Conditional splits moved from the pre to the post phase.",
		}, []string{"condition_type"}),
		persistErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royaltysplit",
			Name:      "conditional_persist_errors_total",
			Help:      "Phase changes that could not be written to storage.",
		}, []string{"condition_type"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "royaltysplit",
			Name:      "live_conditionals",
			Help:      "Conditional splits currently waiting for their threshold.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.evaluations, m.transitions, m.persistErrs, m.live)
	}
	return m
}
