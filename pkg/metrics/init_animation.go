package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnimationMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_runs_total",
			Help: "Animation runs, by outcome",
		},
		[]string{"outcome"},
	)

	r.TokensActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_tokens_active",
			Help: "Tokens currently in flight",
		},
	)

	r.QueueLength = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_run_queue_length",
			Help: "Runs waiting to play",
		},
	)

	r.FrameDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netviz_frame_duration_seconds",
			Help:    "Time spent advancing one animation frame",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)
}
