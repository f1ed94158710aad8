package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zombor/cashclose/internal/closing"
)

// Outcome labels
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics
// records nothing.
type Metrics struct {
	// Registry owns the collectors and backs the /metrics endpoint
	Registry *prometheus.Registry

	extractions *prometheus.CounterVec
	saves       *prometheus.CounterVec
	statuses    *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry so tests can
// build as many as they need
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashclose_extractions_total",
				Help: "Closing sheet extractions by outcome.",
			},
			[]string{"outcome"},
		),
		saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashclose_report_saves_total",
				Help: "Report saves by outcome.",
			},
			[]string{"outcome"},
		),
		statuses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashclose_reports_saved_by_status_total",
				Help: "Persisted reports by reconciliation status.",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) extraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) save(outcome string, status closing.Status) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
	if outcome == outcomeSuccess {
		m.statuses.WithLabelValues(string(status)).Inc()
	}
}
