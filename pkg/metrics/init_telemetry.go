package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTelemetryMetrics() {
	r.TelemetryMessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_telemetry_messages_total",
			Help: "Telemetry messages received, by transport and event",
		},
		[]string{"transport", "event"},
	)

	r.TelemetryDiagnosticsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_telemetry_diagnostics_total",
			Help: "Telemetry problems, by kind (decode_error, topology_mismatch, out_of_order, buffer_overflow)",
		},
		[]string{"kind"},
	)

	r.TelemetryLastMessage = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_telemetry_last_message_timestamp_seconds",
			Help: "Unix time of the last telemetry message",
		},
	)

	r.PublishedFramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_published_frames_total",
			Help: "Frames published by the simulator, by transport and status",
		},
		[]string{"transport", "status"},
	)
}
