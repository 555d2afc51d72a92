package engine

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// Draw cancels every run, rebuilds the graph for topo and replays records
// buffered while nothing was drawn. weights may be nil. An invalid topology
// is rejected before anything changes.
func (e *Engine) Draw(topo telemetry.Topology, weights network.WeightLookup) error {
	layers := topo.Layers()
	if err := validation.ValidateLayers(layers); err != nil {
		return fmt.Errorf("draw %v: %w: %w", layers, visualization.ErrInvalidTopology, err)
	}

	e.scheduler.Cancel()
	e.popup.Reset()
	if err := e.graph.Rebuild(layers, weights); err != nil {
		return fmt.Errorf("draw %v: %w", layers, err)
	}
	e.lastEpoch = 0
	e.sawRecord = false
	e.metrics.RebuildsTotal.WithLabelValues("draw").Inc()
	e.logger.Info("topology drawn", logging.Topology(layers), logging.Count(len(e.graph.Links())))

	pending := e.pending
	e.pending = nil
	e.metrics.RecordsBuffered.Set(0)
	if len(pending) > 0 {
		e.logger.Info("replaying buffered records", logging.Count(len(pending)))
	}
	for _, rec := range pending {
		e.apply(rec)
	}

	e.refreshGraphStatus()
	e.dirty = true
	return nil
}

// Update applies one epoch record to the graph and queues its animation.
// Records that arrive before anything is drawn are buffered; the oldest is
// dropped once the buffer is full.
func (e *Engine) Update(rec *telemetry.EpochRecord) {
	if rec == nil {
		return
	}
	if !e.graph.Drawn() && e.cfg.Topology.AutoDraw && rec.InputSize > 0 {
		topo := e.cfg.DefaultTopology()
		topo.InputNodes = rec.InputSize
		var weights network.WeightLookup
		if rec.WeightsAndBiases != nil {
			weights = rec.WeightsAndBiases
		}
		if err := e.Draw(topo, weights); err != nil {
			e.logger.Warn("auto draw failed", logging.Epoch(rec.Epoch), logging.Error(err))
		}
	}
	if !e.graph.Drawn() {
		e.buffer(rec)
		return
	}
	e.apply(rec)
	e.refreshGraphStatus()
	e.dirty = true
}

func (e *Engine) buffer(rec *telemetry.EpochRecord) {
	limit := validation.DefaultOrInt(e.cfg.Buffer.Size, 16)
	if len(e.pending) >= limit {
		dropped := e.pending[0]
		e.pending = e.pending[1:]
		e.metrics.RecordRecord(outcomeDropped)
		e.metrics.RecordDiagnostic(diagOverflow)
		e.logger.Warn("pre-draw buffer full, dropping oldest record",
			logging.Epoch(dropped.Epoch),
			logging.Count(limit),
		)
	}
	e.pending = append(e.pending, rec)
	e.metrics.RecordRecord(outcomeBuffered)
	e.metrics.RecordsBuffered.Set(float64(len(e.pending)))
	e.status.mu.Lock()
	e.status.buffered = len(e.pending)
	e.status.mu.Unlock()
	e.dirty = true
}

func (e *Engine) apply(rec *telemetry.EpochRecord) {
	if e.sawRecord && rec.Epoch < e.lastEpoch {
		e.metrics.RecordDiagnostic(diagOutOfOrder)
		e.logger.Debug("epoch out of order, applying as received",
			logging.Epoch(rec.Epoch),
			logging.Int("previous_epoch", e.lastEpoch),
		)
	}
	e.sawRecord = true
	e.lastEpoch = rec.Epoch

	report := e.graph.ApplyEpoch(rec)
	if len(report.Mismatches) > 0 {
		first := report.Mismatches[0]
		e.metrics.RecordDiagnostic(diagMismatch)
		e.logger.Warn("record does not match drawn topology",
			logging.Epoch(rec.Epoch),
			logging.Count(len(report.Mismatches)),
			logging.String("field", first.Field),
			logging.Layer(first.Layer),
			logging.Int("drawn", first.Drawn),
			logging.Int("got", first.Got),
		)
	}
	if loss, ok := rec.Loss.Scalar(); ok {
		e.metrics.GraphLoss.Set(loss)
	}
	e.metrics.RecordRecord(outcomeApplied)

	id := e.scheduler.Enqueue(rec)
	e.logger.Debug("record applied", logging.Epoch(rec.Epoch), logging.RunID(id))
}

// Clear cancels every run, hides the popup and empties the graph and the
// pre-draw buffer.
func (e *Engine) Clear() {
	e.scheduler.Cancel()
	e.popup.Reset()
	e.graph.Clear()
	e.pending = nil
	if e.resize != nil {
		// An undrawn graph only records the viewport, so this cannot fail.
		_ = e.graph.Relayout(*e.resize)
		e.resize = nil
	}
	e.lastEpoch = 0
	e.sawRecord = false
	e.metrics.RecordsBuffered.Set(0)
	e.metrics.ResizesPending.Set(0)
	e.metrics.RebuildsTotal.WithLabelValues("clear").Inc()
	e.refreshGraphStatus()
	e.logger.Info("graph cleared")
	e.dirty = true
}

// Reset clears the graph, draws the configured default topology and sets
// the cancellation flag until Start is called.
func (e *Engine) Reset() error {
	e.Clear()
	e.Stop()
	if err := e.Draw(e.cfg.DefaultTopology(), nil); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// MoveNode drags a node to (x, y); incident links and an attached popup follow.
func (e *Engine) MoveNode(id network.NodeID, x, y float64) error {
	if err := validation.ValidateMoveRequest(&validation.MoveRequest{X: x, Y: y}); err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	if !e.graph.Drawn() {
		return fmt.Errorf("move %s: %w", id, network.ErrNotDrawn)
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("move %s: %w", id, network.ErrNodeNotFound)
	}
	if err := n.Drag(x, y); err != nil {
		return err
	}
	e.logger.Debug("node moved",
		logging.Layer(id.Layer),
		logging.NodeIndex(id.Index),
		logging.Float64("x", x),
		logging.Float64("y", y),
	)
	e.dirty = true
	return nil
}

// Resize changes the viewport. While a run is playing or queued the change
// waits until the scheduler is between runs, so no token reads a half
// relaid graph.
func (e *Engine) Resize(width, height float64) error {
	viewport := e.graph.Config().Layout
	viewport.Width, viewport.Height = width, height
	if err := visualization.ValidateViewport(width, height); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	e.resize = &viewport
	e.metrics.ResizesPending.Set(1)
	if !e.scheduler.Playing() {
		e.applyPendingResize()
	}
	return nil
}

// applyPendingResize is the scheduler's between-runs hook.
func (e *Engine) applyPendingResize() {
	if e.resize == nil {
		return
	}
	viewport := *e.resize
	e.resize = nil
	e.metrics.ResizesPending.Set(0)
	if err := e.graph.Relayout(viewport); err != nil {
		e.logger.Error("relayout failed", logging.Error(err))
		return
	}
	e.metrics.RebuildsTotal.WithLabelValues("resize").Inc()
	if owner, ok := e.popup.Owner(); ok {
		if n, found := e.graph.Node(owner); found {
			e.popup.Follow(owner, n.Pos)
		}
	}
	e.logger.Debug("viewport resized",
		logging.Float64("width", viewport.Width),
		logging.Float64("height", viewport.Height),
	)
	e.dirty = true
}

// ResizePending reports whether a resize is waiting for the scheduler.
func (e *Engine) ResizePending() bool { return e.resize != nil }

// Buffered returns the number of records waiting for a topology.
func (e *Engine) Buffered() int { return len(e.pending) }

// Frame advances animation and the popup debounce to now and reports
// whether more frames are needed.
func (e *Engine) Frame(now time.Time) bool {
	start := time.Now()
	e.popup.Tick(now)
	more := e.scheduler.Frame(now)
	e.metrics.UpdateSchedulerMetrics(len(e.scheduler.Tokens()), e.scheduler.QueueLen(), time.Since(start))
	return more
}

func (e *Engine) refreshGraphStatus() {
	e.metrics.UpdateGraphMetrics(len(e.graph.Nodes()), len(e.graph.Links()), e.graph.Epoch())
	e.status.mu.Lock()
	e.status.drawn = e.graph.Drawn()
	e.status.buffered = len(e.pending)
	e.status.epoch = e.graph.Epoch()
	e.status.mu.Unlock()
}
