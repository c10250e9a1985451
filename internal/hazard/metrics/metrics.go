package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts hazard reports.
type Metrics struct {
	Reported *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Reported: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_hazard_reports_total",
			Help: "Hazard reports accepted, by type and severity",
		}, []string{"type", "severity"}),
	}
}

func (m *Metrics) IncReported(typ, severity string) {
	if m != nil {
		m.Reported.WithLabelValues(typ, severity).Inc()
	}
}
