package authz

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome de una decisión.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registra warden_authz_decisions_total en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_authz_decisions_total",
			Help: "Authorization decisions by route, outcome and reason.",
		}, []string{"route", "outcome", "reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.decisions)
	}
	return m
}

func (m *Metrics) observe(route, outcome, reason string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(route, outcome, reason).Inc()
}

// Decisions expone el vector para tests.
func (m *Metrics) Decisions() *prometheus.CounterVec { return m.decisions }
