package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	// Inbound HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline gate metrics
	GateRejectionsTotal *prometheus.CounterVec

	// Downstream dispatch metrics
	DownstreamRequestsTotal *prometheus.CounterVec
	DownstreamDuration      *prometheus.HistogramVec
	DownstreamErrorsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all gateway metrics on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of inbound HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "Inbound HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GateRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_gate_rejections_total",
				Help: "Requests rejected by a pipeline gate, by error code",
			},
			[]string{"code"},
		),
		DownstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_downstream_requests_total",
				Help: "Requests forwarded to backend services",
			},
			[]string{"service", "status"},
		),
		DownstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_downstream_duration_seconds",
				Help:    "Downstream round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		DownstreamErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_downstream_errors_total",
				Help: "Downstream dispatch failures (timeouts, connection errors)",
			},
			[]string{"service"},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GateRejectionsTotal,
		m.DownstreamRequestsTotal,
		m.DownstreamDuration,
		m.DownstreamErrorsTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed inbound request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, httpStatusLabel(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDownstream records one downstream dispatch attempt
func (m *Metrics) ObserveDownstream(service string, status int, duration time.Duration, err error) {
	if err != nil {
		m.DownstreamErrorsTotal.WithLabelValues(service).Inc()
		return
	}
	m.DownstreamRequestsTotal.WithLabelValues(service, httpStatusLabel(status)).Inc()
	m.DownstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func httpStatusLabel(status int) string {
	// Bucket by class to keep label cardinality bounded.
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
