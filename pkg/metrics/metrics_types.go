package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Stream Metrics
	StreamSubscribers      prometheus.Gauge
	StreamSnapshotsSkipped prometheus.Counter

	// Engine Metrics
	RecordsTotal    *prometheus.CounterVec
	RecordsBuffered prometheus.Gauge
	GraphNodes      prometheus.Gauge
	GraphLinks      prometheus.Gauge
	GraphEpoch      prometheus.Gauge
	GraphLoss       prometheus.Gauge
	RebuildsTotal   *prometheus.CounterVec
	ResizesPending  prometheus.Gauge

	// Animation Metrics
	RunsTotal     *prometheus.CounterVec
	TokensActive  prometheus.Gauge
	QueueLength   prometheus.Gauge
	FrameDuration prometheus.Histogram

	// Telemetry Metrics
	TelemetryMessagesTotal    *prometheus.CounterVec
	TelemetryDiagnosticsTotal *prometheus.CounterVec
	TelemetryLastMessage      prometheus.Gauge
	PublishedFramesTotal      *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHTTPMetrics()
	r.initEngineMetrics()
	r.initAnimationMetrics()
	r.initTelemetryMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
