package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	engineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acl_engine_requests_total",
			Help: "Authorization engine calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// Tuple cleanup after a committed relational delete is not retried;
	// this counter is the monitored gap.
	tupleCleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acl_tuple_cleanup_failures_total",
		Help: "Tuple deletions that failed after the relational delete committed.",
	})

	concurrencyConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_concurrency_conflicts_total",
			Help: "Optimistic-concurrency updates rejected by row-version mismatch.",
		},
		[]string{"kind"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		engineRequestsTotal, tupleCleanupFailures, concurrencyConflicts,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// EngineRequest records one authorization engine call.
func EngineRequest(op, outcome string) {
	engineRequestsTotal.WithLabelValues(op, outcome).Inc()
}

// TupleCleanupFailure records a failed post-delete tuple cleanup.
func TupleCleanupFailure() {
	tupleCleanupFailures.Inc()
}

// ConcurrencyConflict records a rejected compare-and-swap update.
func ConcurrencyConflict(kind string) {
	concurrencyConflicts.WithLabelValues(kind).Inc()
}

// Instrument wraps a handler with RPS, latency and in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
