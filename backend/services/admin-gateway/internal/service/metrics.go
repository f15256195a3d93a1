package service

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics counts payment outcomes in Prometheus.
type PaymentMetrics struct {
	recorded prometheus.Counter
	rejected *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment counters on reg.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admin_gateway",
			Name:      "payments_recorded_total",
			Help:      "Payments accepted and sent to the backend.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_gateway",
			Name:      "payments_rejected_total",
			Help:      "Payments rejected before reaching the backend, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.recorded, m.rejected)
	return m
}

// PaymentRecorded implements PaymentRecorder.
func (m *PaymentMetrics) PaymentRecorded() {
	m.recorded.Inc()
}

// PaymentRejected implements PaymentRecorder.
func (m *PaymentMetrics) PaymentRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}
