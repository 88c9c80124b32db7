package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Dataspace metrics
	DataspacesConstructed *prometheus.CounterVec
	DataspacesDenied      *prometheus.CounterVec
	ConstructDuration     *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry creates a metrics collector registered on reg
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "romd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "romd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		DataspacesConstructed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "romd_dataspaces_constructed_total",
				Help: "Total number of dataspaces constructed",
			},
			[]string{"kind"},
		),
		DataspacesDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "romd_dataspaces_denied_total",
				Help: "Total number of refused dataspace constructions",
			},
			[]string{"reason"},
		),
		ConstructDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "romd_construct_duration_seconds",
				Help:    "Dataspace construction duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"status"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "romd_sessions_active",
				Help: "Number of open ROM sessions",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// DataspaceConstructed counts a constructed dataspace
func (m *Metrics) DataspaceConstructed(kind string) {
	m.DataspacesConstructed.WithLabelValues(kind).Inc()
}

// DataspaceDenied counts a refused construction
func (m *Metrics) DataspaceDenied(reason string) {
	m.DataspacesDenied.WithLabelValues(reason).Inc()
}
