package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Calculation metrics
	CalculationsTotal     *prometheus.CounterVec
	ValidationErrorsTotal *prometheus.CounterVec

	// Analysis lifecycle metrics
	AnalysesSavedTotal   prometheus.Counter
	AnalysesDeletedTotal prometheus.Counter
	ExportsTotal         prometheus.Counter

	// Session metrics
	LoginsTotal *prometheus.CounterVec

	// Storage metrics
	StorageOperations *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		CalculationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "margem_calculations_total",
				Help: "Total number of metric calculations by outcome",
			},
			[]string{"status"},
		),

		ValidationErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "margem_validation_errors_total",
				Help: "Total number of form validation errors by field",
			},
			[]string{"field"},
		),

		AnalysesSavedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "margem_analyses_saved_total",
				Help: "Total number of analyses persisted",
			},
		),

		AnalysesDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "margem_analyses_deleted_total",
				Help: "Total number of analyses deleted",
			},
		),

		ExportsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "margem_exports_total",
				Help: "Total number of CSV exports generated",
			},
		),

		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "margem_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"status"},
		),

		StorageOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "margem_storage_operations_total",
				Help: "Total number of key-value storage operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Calculation outcome metrics
func (m *Metrics) RecordCalculation(status string) {
	m.CalculationsTotal.WithLabelValues(status).Inc()
}

// Validation error metrics
func (m *Metrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// Login outcome metrics
func (m *Metrics) RecordLogin(status string) {
	m.LoginsTotal.WithLabelValues(status).Inc()
}

// Storage operation metrics
func (m *Metrics) RecordStorageOperation(operation, status string) {
	m.StorageOperations.WithLabelValues(operation, status).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
