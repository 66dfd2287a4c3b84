package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	AuthOutcomesTotal       *prometheus.CounterVec
	RateLimitDecisionsTotal *prometheus.CounterVec
	JWKSRefreshesTotal      *prometheus.CounterVec
	ProvisioningTotal       *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellchat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wellchat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellchat_auth_outcomes_total",
				Help: "Authorization gate outcomes by guard",
			},
			[]string{"guard", "outcome"},
		),
		RateLimitDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellchat_rate_limit_decisions_total",
				Help: "Rate limiter decisions by scope",
			},
			[]string{"scope", "decision"},
		),
		JWKSRefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellchat_jwks_refreshes_total",
				Help: "Signing key set fetches by result",
			},
			[]string{"result"},
		),
		ProvisioningTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellchat_provisioning_total",
				Help: "Local user upserts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthOutcomesTotal,
		m.RateLimitDecisionsTotal,
		m.JWKSRefreshesTotal,
		m.ProvisioningTotal,
	)

	return m
}

// RecordAuthOutcome counts a gate decision; outcome is "ok" or an error type
func (m *Metrics) RecordAuthOutcome(guard, outcome string) {
	if m == nil {
		return
	}
	m.AuthOutcomesTotal.WithLabelValues(guard, outcome).Inc()
}

// RecordRateLimit counts an admit decision for a route scope
func (m *Metrics) RecordRateLimit(scope, decision string) {
	if m == nil {
		return
	}
	m.RateLimitDecisionsTotal.WithLabelValues(scope, decision).Inc()
}

// RecordJWKSRefresh counts a key set fetch
func (m *Metrics) RecordJWKSRefresh(success bool) {
	if m == nil {
		return
	}
	m.JWKSRefreshesTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordProvisioning counts a user upsert
func (m *Metrics) RecordProvisioning(success bool) {
	if m == nil {
		return
	}
	m.ProvisioningTotal.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments requests, labelling them by chi route pattern
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the registry in the Prometheus text format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
