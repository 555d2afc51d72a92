package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.RecordsTotal == nil {
		t.Error("RecordsTotal not initialized")
	}
	if r.RunsTotal == nil {
		t.Error("RunsTotal not initialized")
	}
	if r.TelemetryMessagesTotal == nil {
		t.Error("TelemetryMessagesTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/graph", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/control/stop", "202", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/graph", "404", 50*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/graph", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("Counter value = %v, want 1", v)
	}
}

func TestRecordOutcomes(t *testing.T) {
	r := NewRegistry()

	r.RecordRecord("applied")
	r.RecordRecord("applied")
	r.RecordRecord("buffered")
	r.RecordRun("completed")
	r.RecordRun("stopped")
	r.RecordRun("completed")

	tests := []struct {
		name     string
		counter  prometheus.Counter
		expected float64
	}{
		{"applied", r.RecordsTotal.WithLabelValues("applied"), 2},
		{"buffered", r.RecordsTotal.WithLabelValues("buffered"), 1},
		{"dropped", r.RecordsTotal.WithLabelValues("dropped"), 0},
		{"runs completed", r.RunsTotal.WithLabelValues("completed"), 2},
		{"runs stopped", r.RunsTotal.WithLabelValues("stopped"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := counterValue(t, tt.counter); v != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, v, tt.expected)
			}
		})
	}
}

func TestRecordTelemetryMessage(t *testing.T) {
	r := NewRegistry()
	at := time.Unix(1700000000, 0)

	r.RecordTelemetryMessage("websocket", "training_update", at)
	r.RecordTelemetryMessage("websocket", "training_update", at)
	r.RecordTelemetryMessage("redis", "topology", at)
	r.RecordDiagnostic("decode_error")

	if v := counterValue(t, r.TelemetryMessagesTotal.WithLabelValues("websocket", "training_update")); v != 2 {
		t.Errorf("websocket updates = %v, want 2", v)
	}
	if v := counterValue(t, r.TelemetryMessagesTotal.WithLabelValues("redis", "topology")); v != 1 {
		t.Errorf("redis topology = %v, want 1", v)
	}
	if v := counterValue(t, r.TelemetryDiagnosticsTotal.WithLabelValues("decode_error")); v != 1 {
		t.Errorf("decode errors = %v, want 1", v)
	}
	if v := gaugeValue(t, r.TelemetryLastMessage); v != 1700000000 {
		t.Errorf("last message = %v, want 1700000000", v)
	}
}

func TestRecordPublish(t *testing.T) {
	r := NewRegistry()

	r.RecordPublish("redis", nil)
	r.RecordPublish("redis", errors.New("connection refused"))

	if v := counterValue(t, r.PublishedFramesTotal.WithLabelValues("redis", "success")); v != 1 {
		t.Errorf("success = %v, want 1", v)
	}
	if v := counterValue(t, r.PublishedFramesTotal.WithLabelValues("redis", "error")); v != 1 {
		t.Errorf("error = %v, want 1", v)
	}
}

func TestRecordStreamSkips(t *testing.T) {
	r := NewRegistry()

	r.RecordStreamSkips(3)
	r.RecordStreamSkips(0)
	r.RecordStreamSkips(-2)

	if v := counterValue(t, r.StreamSnapshotsSkipped); v != 3 {
		t.Errorf("skipped = %v, want 3", v)
	}
}

func TestGaugeMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateGraphMetrics(7, 12, 42)
	r.UpdateSchedulerMetrics(3, 1, time.Millisecond)

	tests := []struct {
		name     string
		gauge    prometheus.Gauge
		expected float64
	}{
		{"GraphNodes", r.GraphNodes, 7},
		{"GraphLinks", r.GraphLinks, 12},
		{"GraphEpoch", r.GraphEpoch, 42},
		{"TokensActive", r.TokensActive, 3},
		{"QueueLength", r.QueueLength, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := gaugeValue(t, tt.gauge); v != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, v, tt.expected)
			}
		})
	}
}

func TestHistogramMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateSchedulerMetrics(0, 0, 100*time.Microsecond)
	r.UpdateSchedulerMetrics(0, 0, 2*time.Millisecond)

	var metric dto.Metric
	if err := r.FrameDuration.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Frame duration sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateSystemMetrics(time.Now().Add(-time.Hour))

	if v := gaugeValue(t, r.UptimeSeconds); v < 3600 {
		t.Errorf("UptimeSeconds = %v, want >= 3600", v)
	}
	if v := gaugeValue(t, r.GoRoutines); v < 1 {
		t.Errorf("GoRoutines = %v, want >= 1", v)
	}
	if v := gaugeValue(t, r.MemoryAllocBytes); v <= 0 {
		t.Errorf("MemoryAllocBytes = %v, want > 0", v)
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	if len(metrics) == 0 {
		t.Error("No metrics registered")
	}

	// Vectors only show up once a label set has been touched.
	expectedMetrics := []string{
		"netviz_graph_nodes",
		"netviz_tokens_active",
		"netviz_uptime_seconds",
		"netviz_records_buffered",
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}
