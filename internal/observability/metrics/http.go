package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics carries the api server's request metrics plus the search
// pipeline observations. It satisfies the search use case's Metrics interface.
type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal         *prometheus.CounterVec
	searchResults       *prometheus.HistogramVec
	searchConditions    *prometheus.HistogramVec
	embeddingFailures   *prometheus.CounterVec
	historySaveFailures *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelsearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panelsearch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "panelsearch",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelsearch",
			Subsystem: "search",
			Name:      "completed_total",
			Help:      "Total completed searches by input method and mode.",
		},
		[]string{"service", "method", "mode"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panelsearch",
			Subsystem: "search",
			Name:      "result_panels",
			Help:      "Distribution of returned panels per completed search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "method"},
	)
	searchConditions := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panelsearch",
			Subsystem: "search",
			Name:      "conditions",
			Help:      "Distribution of condition groups per completed search.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{"service"},
	)
	embeddingFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelsearch",
			Subsystem: "search",
			Name:      "embedding_failures_total",
			Help:      "Total query embedding failures degraded to filter-only searches.",
		},
		[]string{"service"},
	)
	historySaveFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelsearch",
			Subsystem: "search",
			Name:      "history_save_failures_total",
			Help:      "Total history persistence failures degraded to local ids.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchResults,
		searchConditions,
		embeddingFailures,
		historySaveFailures,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		service:             service,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		searchTotal:         searchTotal,
		searchResults:       searchResults,
		searchConditions:    searchConditions,
		embeddingFailures:   embeddingFailures,
		historySaveFailures: historySaveFailures,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/searches/") {
		return path
	}
	if strings.HasSuffix(path, "/refine") {
		return "/v1/searches/{search_id}/refine"
	}
	return "/v1/searches/{search_id}"
}

func (m *HTTPServerMetrics) SearchCompleted(method, mode string, conditions, results int) {
	if method == "" {
		method = "unknown"
	}
	if mode == "" {
		mode = "unknown"
	}
	m.searchTotal.WithLabelValues(m.service, method, mode).Inc()
	m.searchResults.WithLabelValues(m.service, method).Observe(float64(results))
	if conditions > 0 {
		m.searchConditions.WithLabelValues(m.service).Observe(float64(conditions))
	}
}

func (m *HTTPServerMetrics) EmbeddingFailed() {
	m.embeddingFailures.WithLabelValues(m.service).Inc()
}

func (m *HTTPServerMetrics) HistorySaveFailed() {
	m.historySaveFailures.WithLabelValues(m.service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
