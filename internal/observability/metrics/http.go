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

// HTTPServerMetrics holds the API server's request metrics plus the
// routing observations recorded during query orchestration. It also
// implements ports.RoutingRecorder.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	routingDecisionsTotal *prometheus.CounterVec
	retrievalTierTotal    *prometheus.CounterVec
	chartGeneratedTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ir",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ir",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ir",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	routingDecisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ir",
			Subsystem: "routing",
			Name:      "decisions_total",
			Help:      "Total routed queries by classified intent.",
		},
		[]string{"decision"},
	)
	retrievalTierTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ir",
			Subsystem: "retrieval",
			Name:      "tier_total",
			Help:      "Total retrieval runs by the fallback tier that produced the result.",
		},
		[]string{"tier"},
	)
	chartGeneratedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ir",
			Subsystem: "charts",
			Name:      "generated_total",
			Help:      "Total generated charts by kind.",
		},
		[]string{"kind"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		routingDecisionsTotal,
		retrievalTierTotal,
		chartGeneratedTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		routingDecisionsTotal: routingDecisionsTotal,
		retrievalTierTotal:    retrievalTierTotal,
		chartGeneratedTotal:   chartGeneratedTotal,
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
	switch {
	case strings.HasPrefix(path, "/v1/knowledge/"):
		return "/v1/knowledge/{entry_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordDecision(decision string) {
	if decision == "" {
		decision = "unknown"
	}
	m.routingDecisionsTotal.WithLabelValues(decision).Inc()
}

func (m *HTTPServerMetrics) RecordRetrievalTier(tier string) {
	if tier == "" {
		tier = "unknown"
	}
	m.retrievalTierTotal.WithLabelValues(tier).Inc()
}

func (m *HTTPServerMetrics) RecordChartGenerated(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.chartGeneratedTotal.WithLabelValues(kind).Inc()
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
