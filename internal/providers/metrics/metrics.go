package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for upstream data providers.
type Metrics struct {
	// Upstream calls by provider and outcome ("ok" or an error category)
	Calls *prometheus.CounterVec

	// Fallback values served, by provider and reason
	Fallbacks *prometheus.CounterVec

	BreakerState *prometheus.GaugeVec
}

// New creates the provider metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_provider_calls_total",
			Help: "Upstream provider calls by outcome",
		}, []string{"provider", "outcome"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abhaya_provider_fallbacks_total",
			Help: "Fallback values served instead of upstream data",
		}, []string{"provider", "reason"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "abhaya_provider_breaker_open",
			Help: "1 while the provider circuit breaker is open",
		}, []string{"provider"}),
	}
}

func (m *Metrics) IncCall(provider, outcome string) {
	if m != nil {
		m.Calls.WithLabelValues(provider, outcome).Inc()
	}
}

func (m *Metrics) IncFallback(provider, reason string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(provider, reason).Inc()
	}
}

func (m *Metrics) SetBreakerOpen(provider string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(provider).Set(v)
}
