package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body.
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

func (r *Registry) IncHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Inc() }

func (r *Registry) DecHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Dec() }

// RecordStreamSkips adds n snapshots skipped by a stream client.
func (r *Registry) RecordStreamSkips(n int64) {
	if n > 0 {
		r.StreamSnapshotsSkipped.Add(float64(n))
	}
}

// RecordRecord counts one epoch record outcome: applied, buffered, dropped.
func (r *Registry) RecordRecord(outcome string) {
	r.RecordsTotal.WithLabelValues(outcome).Inc()
}

// RecordRun counts a finished animation run.
func (r *Registry) RecordRun(outcome string) {
	r.RunsTotal.WithLabelValues(outcome).Inc()
}

// RecordTelemetryMessage counts a received message and stamps its arrival.
func (r *Registry) RecordTelemetryMessage(transport, event string, at time.Time) {
	r.TelemetryMessagesTotal.WithLabelValues(transport, event).Inc()
	r.TelemetryLastMessage.Set(float64(at.UnixNano()) / 1e9)
}

// RecordDiagnostic counts a telemetry problem.
func (r *Registry) RecordDiagnostic(kind string) {
	r.TelemetryDiagnosticsTotal.WithLabelValues(kind).Inc()
}

// RecordPublish counts a frame sent by the simulator.
func (r *Registry) RecordPublish(transport string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.PublishedFramesTotal.WithLabelValues(transport, status).Inc()
}

// UpdateGraphMetrics sets the graph size gauges.
func (r *Registry) UpdateGraphMetrics(nodes, links, epoch int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphLinks.Set(float64(links))
	r.GraphEpoch.Set(float64(epoch))
}

// UpdateSchedulerMetrics sets the animation gauges and observes frame time.
func (r *Registry) UpdateSchedulerMetrics(tokens, queued int, frame time.Duration) {
	r.TokensActive.Set(float64(tokens))
	r.QueueLength.Set(float64(queued))
	r.FrameDuration.Observe(frame.Seconds())
}

// UpdateSystemMetrics samples uptime, goroutines and memory.
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
