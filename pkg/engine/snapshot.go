package engine

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/animation"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/pubsub"
)

// SchedulerState describes playback at snapshot time.
type SchedulerState struct {
	State    string `json:"state"`
	RunID    string `json:"run_id,omitempty"`
	Epoch    int    `json:"epoch"`
	Queued   int    `json:"queued"`
	Stopped  bool   `json:"stopped"`
	Resizing bool   `json:"resize_pending"`
}

// Snapshot is an immutable view of the whole engine. It is safe to share
// between goroutines.
type Snapshot struct {
	Version   uint64            `json:"version"`
	Taken     time.Time         `json:"taken"`
	Drawn     bool              `json:"drawn"`
	Buffered  int               `json:"buffered"`
	Graph     network.Snapshot  `json:"graph"`
	Tokens    []animation.Token `json:"tokens"`
	Popup     interaction.View  `json:"popup"`
	Scheduler SchedulerState    `json:"scheduler"`
}

// Snapshot builds a fresh snapshot. It must be called from the owning
// goroutine; other goroutines use Latest.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:  e.version,
		Taken:    time.Now(),
		Drawn:    e.graph.Drawn(),
		Buffered: len(e.pending),
		Graph:    e.graph.Snapshot(),
		Tokens:   e.scheduler.Tokens(),
		Popup:    e.popup.View(),
		Scheduler: SchedulerState{
			State:    e.scheduler.State().String(),
			Queued:   e.scheduler.QueueLen(),
			Stopped:  e.stopped.Load(),
			Resizing: e.resize != nil,
		},
	}
	if id, epoch, ok := e.scheduler.CurrentRun(); ok {
		s.Scheduler.RunID = id
		s.Scheduler.Epoch = epoch
	}
	return s
}

// publish stores a new snapshot for Latest and fans it out to subscribers.
func (e *Engine) publish(now time.Time) *Snapshot {
	e.version++
	s := e.Snapshot()
	s.Taken = now
	e.latest.Store(s)
	e.snapshots.Publish(TopicSnapshot, s)
	e.dirty = false
	return s
}

// Latest returns the most recently published snapshot. Safe for concurrent use.
func (e *Engine) Latest() *Snapshot {
	return e.latest.Load()
}

// Subscribe delivers every published snapshot until ctx is done. A slow
// subscriber only ever holds the newest snapshot.
func (e *Engine) Subscribe(ctx context.Context) (*pubsub.Subscription[*Snapshot], error) {
	return e.snapshots.Subscribe(ctx, TopicSnapshot)
}

// Subscribers returns the number of open snapshot subscriptions.
func (e *Engine) Subscribers() int {
	return e.snapshots.GetSubscriberCount(TopicSnapshot)
}

// Node returns the snapshot of one node.
func (s *Snapshot) Node(id network.NodeID) (network.NodeSnapshot, bool) {
	return s.Graph.Node(id)
}
