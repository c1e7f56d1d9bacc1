package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics carries the report worker's processing metrics.
type WorkerMetrics struct {
	registry *prometheus.Registry

	reportTotal    *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	reportInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reportTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelsearch",
			Subsystem: "worker",
			Name:      "report_total",
			Help:      "Total generated search reports by status.",
		},
		[]string{"service", "status"},
	)
	reportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panelsearch",
			Subsystem: "worker",
			Name:      "report_duration_seconds",
			Help:      "Report generation duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	reportInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "panelsearch",
			Subsystem: "worker",
			Name:      "report_in_flight",
			Help:      "Number of in-flight report generation tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(reportTotal, reportDuration, reportInFlight)

	return &WorkerMetrics{
		registry:       registry,
		reportTotal:    reportTotal,
		reportDuration: reportDuration,
		reportInFlight: reportInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartReport() {
	m.reportInFlight.Inc()
}

func (m *WorkerMetrics) FinishReport(service string, duration time.Duration, err error) {
	m.reportInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reportTotal.WithLabelValues(service, status).Inc()
	m.reportDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
