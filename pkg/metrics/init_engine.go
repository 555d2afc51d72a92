package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.RecordsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_records_total",
			Help: "Epoch records handled by the engine, by outcome",
		},
		[]string{"outcome"},
	)

	r.RecordsBuffered = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_records_buffered",
			Help: "Records waiting for a topology to be drawn",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_nodes",
			Help: "Nodes in the drawn graph",
		},
	)

	r.GraphLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_links",
			Help: "Links in the drawn graph",
		},
	)

	r.GraphEpoch = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_epoch",
			Help: "Epoch of the last applied record",
		},
	)

	r.GraphLoss = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_loss",
			Help: "Loss of the last applied record",
		},
	)

	r.RebuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_rebuilds_total",
			Help: "Graph rebuilds, by reason",
		},
		[]string{"reason"},
	)

	r.ResizesPending = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_resizes_pending",
			Help: "1 while a viewport resize waits for the scheduler to go idle",
		},
	)
}
