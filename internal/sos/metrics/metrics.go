package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for SOS alerts.
type Metrics struct {
	AlertsStarted prometheus.Counter

	// Terminal outcomes by state and trigger ("countdown", "silent", "" for cancels)
	AlertOutcomes *prometheus.CounterVec

	NotifyFailures *prometheus.CounterVec

	ArmedAlerts prometheus.Gauge

	DispatchLatency prometheus.Histogram
}

// New creates the SOS metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AlertsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "abhaya_sos_alerts_started_total",
			Help: "SOS alerts armed",
		}),
		AlertOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_sos_alert_outcomes_total",
			Help: "SOS alerts reaching a terminal state",
		}, []string{"state", "trigger"}),
		NotifyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_sos_notify_failures_total",
			Help: "Dispatch notifications that could not be delivered, by channel",
		}, []string{"channel"}),
		ArmedAlerts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "abhaya_sos_armed_alerts",
			Help: "Alerts currently counting down",
		}),
		DispatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "abhaya_sos_dispatch_seconds",
			Help:    "Time from arming to dispatch",
			Buckets: []float64{0.5, 1, 2, 3, 4, 5, 6, 10},
		}),
	}
}

func (m *Metrics) IncStarted() {
	if m != nil {
		m.AlertsStarted.Inc()
		m.ArmedAlerts.Inc()
	}
}

// ObserveOutcome records a terminal transition. armedFor is the time the
// alert spent armed.
func (m *Metrics) ObserveOutcome(state, trigger string, armedFor float64) {
	if m == nil {
		return
	}
	m.ArmedAlerts.Dec()
	m.AlertOutcomes.WithLabelValues(state, trigger).Inc()
	if state == "dispatched" {
		m.DispatchLatency.Observe(armedFor)
	}
}

// DecArmed is used when an armed alert is abandoned at shutdown.
func (m *Metrics) DecArmed() {
	if m != nil {
		m.ArmedAlerts.Dec()
	}
}

func (m *Metrics) IncNotifyFailure(channel string) {
	if m != nil {
		m.NotifyFailures.WithLabelValues(channel).Inc()
	}
}
