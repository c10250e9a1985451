package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for sessions.
type Metrics struct {
	// Session reads by result: "hit", "miss", "expired", "malformed"
	SessionReads *prometheus.CounterVec

	// Logins by kind and outcome
	Logins *prometheus.CounterVec

	HeartbeatTicks prometheus.Counter
}

// New creates the session metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_session_reads_total",
			Help: "Session slot reads by result",
		}, []string{"result"}),

		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_logins_total",
			Help: "Login attempts by session kind and outcome",
		}, []string{"kind", "outcome"}),

		HeartbeatTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "abhaya_session_heartbeat_ticks_total",
			Help: "Heartbeat ticks that touched a session slot",
		}),
	}
}

// IncSessionRead records one slot read.
func (m *Metrics) IncSessionRead(result string) {
	if m != nil {
		m.SessionReads.WithLabelValues(result).Inc()
	}
}

// IncLogin records a login attempt.
func (m *Metrics) IncLogin(kind, outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncHeartbeatTick() {
	if m != nil {
		m.HeartbeatTicks.Inc()
	}
}
