package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the registry service. HTTP traffic is observed by a
// single router middleware keyed on the matched chi route pattern, so
// handlers never wrap themselves; registry operations report through
// Observe with their error as the outcome.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge

	operations *prometheus.CounterVec
	opLatency  *prometheus.HistogramVec
	schemas    prometheus.Gauge

	authFailures prometheus.Counter
}

// NewMetrics registers the service metrics with the default registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avro_registry_http_requests_total",
			Help: "HTTP requests by method, matched route, and status code",
		}, []string{"method", "route", "code"}),

		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avro_registry_http_request_seconds",
			Help:    "HTTP request latency by method and matched route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		inflight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "avro_registry_http_inflight_requests",
			Help: "HTTP requests currently being served",
		}),

		operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avro_registry_operations_total",
			Help: "Registry operations by name and outcome",
		}, []string{"operation", "outcome"}),

		opLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avro_registry_operation_seconds",
			Help:    "Registry operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		schemas: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "avro_registry_schemas",
			Help: "Schemas currently registered",
		}),

		authFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avro_registry_auth_failures_total",
			Help: "Requests rejected by API key authentication",
		}),
	}
}

// Middleware observes every request passing through the router. The route
// label is the chi pattern that matched, resolved after the handler ran,
// so path parameters do not explode the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := statusRecorder{ResponseWriter: w}
		next.ServeHTTP(&rec, r)

		route := "unmatched"
		if ctx := chi.RouteContext(r.Context()); ctx != nil {
			if pattern := ctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status())).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Observe records one registry operation; a nil error counts as ok.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.opLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetSchemaCount updates the registered-schema gauge.
func (m *Metrics) SetSchemaCount(n int) {
	m.schemas.Set(float64(n))
}

// AuthFailure counts a rejected request.
func (m *Metrics) AuthFailure() {
	m.authFailures.Inc()
}

// statusRecorder remembers the first status code written so the
// middleware can label the request after the fact.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}
