package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// AI generation metrics
	GenerationRequestsTotal *prometheus.CounterVec
	GenerationDuration      *prometheus.HistogramVec
	GenerationErrorsTotal   *prometheus.CounterVec
	GenerationFallbacks     *prometheus.CounterVec

	// Auth metrics
	LoginAttemptsTotal  *prometheus.CounterVec
	TokenRefreshesTotal *prometheus.CounterVec
	TokenReuseDetected  prometheus.Counter

	// External API metrics
	ProviderRequestsTotal *prometheus.CounterVec
	ProviderErrorsTotal   *prometheus.CounterVec
	ProviderDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// AI generation metrics
		GenerationRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Total number of AI generation requests",
			},
			[]string{"component_type", "template_type"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easy_website",
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Duration of AI generation requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"component_type", "status"},
		),
		GenerationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "generation",
				Name:      "errors_total",
				Help:      "Total number of AI generation errors",
			},
			[]string{"component_type", "error_type"},
		),
		GenerationFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "generation",
				Name:      "raw_text_fallbacks_total",
				Help:      "Total number of generations that fell back to raw text output",
			},
			[]string{"component_type"},
		),

		// Auth metrics
		LoginAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenRefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "auth",
				Name:      "token_refreshes_total",
				Help:      "Total number of refresh-token exchanges by outcome",
			},
			[]string{"outcome"},
		),
		TokenReuseDetected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "auth",
				Name:      "token_reuse_detected_total",
				Help:      "Total number of refresh attempts with an already-revoked token",
			},
		),

		// External API metrics
		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "provider",
				Name:      "requests_total",
				Help:      "Total number of outbound AI provider requests",
			},
			[]string{"provider", "operation"},
		),
		ProviderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "provider",
				Name:      "errors_total",
				Help:      "Total number of outbound AI provider errors",
			},
			[]string{"provider", "operation", "error_type"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easy_website",
				Subsystem: "provider",
				Name:      "duration_seconds",
				Help:      "Duration of outbound AI provider calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"provider", "operation"},
		),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easy_website",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "db",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easy_website",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easy_website",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "easy_website",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easy_website",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// SetMetrics overrides the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	globalMetrics = m
}

// RecordGenerationRequest records an AI generation request
func (m *Metrics) RecordGenerationRequest(componentType, templateType string) {
	m.GenerationRequestsTotal.WithLabelValues(componentType, templateType).Inc()
}

// RecordGenerationDuration records the duration of an AI generation request
func (m *Metrics) RecordGenerationDuration(componentType, status string, duration time.Duration) {
	m.GenerationDuration.WithLabelValues(componentType, status).Observe(duration.Seconds())
}

// RecordGenerationError records an AI generation error
func (m *Metrics) RecordGenerationError(componentType, errorType string) {
	m.GenerationErrorsTotal.WithLabelValues(componentType, errorType).Inc()
}

// RecordGenerationFallback records a generation that returned raw text instead of props
func (m *Metrics) RecordGenerationFallback(componentType string) {
	m.GenerationFallbacks.WithLabelValues(componentType).Inc()
}

// RecordLoginAttempt records a login attempt
func (m *Metrics) RecordLoginAttempt(outcome string) {
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenRefresh records a refresh-token exchange
func (m *Metrics) RecordTokenRefresh(outcome string) {
	m.TokenRefreshesTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenReuse records an attempt to use an already-revoked refresh token
func (m *Metrics) RecordTokenReuse() {
	m.TokenReuseDetected.Inc()
}

// RecordProviderRequest records an outbound provider request
func (m *Metrics) RecordProviderRequest(provider, operation string) {
	m.ProviderRequestsTotal.WithLabelValues(provider, operation).Inc()
}

// RecordProviderError records an outbound provider error
func (m *Metrics) RecordProviderError(provider, operation, errorType string) {
	m.ProviderErrorsTotal.WithLabelValues(provider, operation, errorType).Inc()
}

// RecordProviderDuration records the duration of an outbound provider call
func (m *Metrics) RecordProviderDuration(provider, operation string, duration time.Duration) {
	m.ProviderDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveGeneration records the generation duration and status
func (t *Timer) ObserveGeneration(componentType, status string) {
	t.metrics.RecordGenerationDuration(componentType, status, time.Since(t.start))
}

// ObserveProvider records the outbound provider call duration
func (t *Timer) ObserveProvider(provider, operation string) {
	t.metrics.RecordProviderDuration(provider, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
