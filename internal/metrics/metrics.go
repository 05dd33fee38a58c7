package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "paywebhook"
)

type Metrics struct {
	// CallbacksTotal counts gateway callbacks by pipeline outcome.
	CallbacksTotal *prometheus.CounterVec
	// CallbackDuration tracks callback processing latency by outcome.
	CallbackDuration *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Total payment gateway callbacks by outcome.",
		}, []string{"outcome"}),
		CallbackDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "callback_duration_seconds",
			Help:      "Payment gateway callback processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	if registerer != nil {
		registerer.MustRegister(m.CallbacksTotal, m.CallbackDuration)
	}

	return m
}

func (m *Metrics) Observe(outcome string, seconds float64) {
	if m == nil {
		return
	}

	m.CallbacksTotal.WithLabelValues(outcome).Inc()
	m.CallbackDuration.WithLabelValues(outcome).Observe(seconds)
}
