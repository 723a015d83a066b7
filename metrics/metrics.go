// Package metrics exposes Prometheus collectors for the oracle
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Price lookup results
const (
	ResultOK         = "ok"
	ResultNoMaxDelay = "no_max_delay"
	ResultOutdated   = "outdated"
	ResultRegistry   = "registry_error"
	ResultInvalid    = "invalid_answer"
)

var (
	// Registry holds the oracle's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	priceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedoracle",
			Subsystem: "price",
			Name:      "lookups_total",
			Help:      "Total number of price lookups by result.",
		},
		[]string{"result"},
	)

	registryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedoracle",
			Subsystem: "registry",
			Name:      "call_duration_seconds",
			Help:      "Duration of feed registry calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method"},
	)

	adminCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedoracle",
			Subsystem: "admin",
			Name:      "calls_total",
			Help:      "Total number of owner-gated mutations by operation and success.",
		},
		[]string{"op", "success"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedoracle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedoracle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		priceLookups,
		registryDuration,
		adminCalls,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordPriceLookup counts a finished price lookup.
func RecordPriceLookup(result string) {
	priceLookups.WithLabelValues(result).Inc()
}

// ObserveRegistryCall records the latency of a registry method call.
func ObserveRegistryCall(method string, duration time.Duration) {
	registryDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAdminCall counts an owner-gated mutation attempt.
func RecordAdminCall(op string, success bool) {
	adminCalls.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

// InstrumentHandler wraps next with HTTP request metrics. Paths are labelled
// with the chi route pattern so asset addresses do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
