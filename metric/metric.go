// Package metric provides the Prometheus metrics surface for itemstore.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all service-level metrics
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StorageErrors   *prometheus.CounterVec
	RateLimited     prometheus.Counter
	NATSConnected   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all service metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "itemstore",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of API requests by operation and status code",
			},
			[]string{"operation", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "itemstore",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		StorageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "itemstore",
				Subsystem: "storage",
				Name:      "errors_total",
				Help:      "Total number of storage failures by operation and reason",
			},
			[]string{"operation", "reason"},
		),

		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "itemstore",
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "itemstore",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "Whether the NATS connection is established (1) or not (0)",
			},
		),
	}
}

// ObserveRequest records one handled request
func (m *Metrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveStorageError records one classified storage failure
func (m *Metrics) ObserveStorageError(operation, reason string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(operation, reason).Inc()
}

// ObserveRateLimited records one rejected request
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// Registry bundles the service metrics with their Prometheus registry
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with all service metrics and the Go
// runtime collectors registered
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	metrics := NewMetrics()
	prometheusRegistry.MustRegister(
		metrics.RequestsTotal,
		metrics.RequestDuration,
		metrics.StorageErrors,
		metrics.RateLimited,
		metrics.NATSConnected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		prometheusRegistry: prometheusRegistry,
		Metrics:            metrics,
	}
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns the HTTP handler serving the metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}
