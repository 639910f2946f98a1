package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP holds the api server metrics on a private registry, so only
// docvault series show up on the /metrics endpoint.
type HTTP struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	SearchesTotal    prometheus.Counter
	RateLimited      prometheus.Counter
	Rejected         prometheus.Counter
}

func NewHTTP() *HTTP {
	registry := prometheus.NewRegistry()

	m := &HTTP{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docvault_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docvault_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_searches_total",
			Help: "Search requests served.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_http_backpressure_rejected_total",
			Help: "Requests rejected because the in-flight cap was reached.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.SearchesTotal,
		m.RateLimited,
		m.Rejected,
	)
	return m
}

func (m *HTTP) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
