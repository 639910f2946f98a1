package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Worker holds the processing pipeline metrics on a private registry.
type Worker struct {
	registry *prometheus.Registry

	ProcessedTotal     *prometheus.CounterVec
	ProcessDuration    prometheus.Histogram
	ProcessingInFlight prometheus.Gauge
	RulesFiredTotal    prometheus.Counter
	ActionsTotal       *prometheus.CounterVec
}

func NewWorker() *Worker {
	registry := prometheus.NewRegistry()

	m := &Worker{
		registry: registry,
		ProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_documents_processed_total",
			Help: "Documents processed by outcome (processed, error, skipped).",
		}, []string{"outcome"}),
		ProcessDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docvault_document_process_duration_seconds",
			Help:    "End-to-end processing latency per document.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ProcessingInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docvault_documents_processing_in_flight",
			Help: "Documents currently being processed.",
		}),
		RulesFiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_workflow_rules_fired_total",
			Help: "Workflow rules fired across all documents.",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docvault_workflow_actions_total",
			Help: "Workflow actions by type and status.",
		}, []string{"type", "status"}),
	}

	registry.MustRegister(
		m.ProcessedTotal,
		m.ProcessDuration,
		m.ProcessingInFlight,
		m.RulesFiredTotal,
		m.ActionsTotal,
	)
	return m
}

func (m *Worker) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
