package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared by every service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
}

// New creates a private registry with go/process collectors and the shared counters.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to upstream services by target and outcome.",
		}, []string{"upstream", "outcome"}),
	}
	reg.MustRegister(m.httpRequests, m.upstreamRequests)
	return m
}

// Registerer lets services add their own collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method string, code int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// ObserveUpstream counts one upstream call; outcome is usually a status class or "error".
func (m *Metrics) ObserveUpstream(upstream, outcome string) {
	m.upstreamRequests.WithLabelValues(upstream, outcome).Inc()
}
