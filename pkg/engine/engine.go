// Package engine ties the graph, the animation scheduler and the popup
// controller to a telemetry stream. An Engine is owned by one goroutine:
// either the TUI's update loop or Run.
package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/animation"
	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/pubsub"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// TopicSnapshot is the pubsub topic every published snapshot goes to.
const TopicSnapshot = "snapshot"

// ErrNotRunning is returned by Do when no loop is serving commands.
var ErrNotRunning = errors.New("engine loop not running")

// Record outcomes reported to netviz_records_total.
const (
	outcomeApplied  = "applied"
	outcomeBuffered = "buffered"
	outcomeDropped  = "dropped"
)

// Diagnostic kinds reported to netviz_telemetry_diagnostics_total.
const (
	diagMismatch   = "topology_mismatch"
	diagDecode     = "decode_error"
	diagOutOfOrder = "out_of_order"
	diagOverflow   = "buffer_overflow"
)

// Engine is the visualization core. Apart from Stop, Start, Stopped, Latest,
// Subscribe, Subscribers, Do and the status getters, methods must be called
// from the goroutine that owns the engine.
type Engine struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry

	graph     *network.Graph
	scheduler *animation.Scheduler
	popup     *interaction.Controller

	stopped atomic.Bool

	pending     []*telemetry.EpochRecord
	resize      *visualization.LayoutConfig
	lastEpoch   int
	sawRecord   bool
	version     uint64
	dirty       bool
	lastPlaying bool

	latest    atomic.Pointer[Snapshot]
	snapshots *pubsub.PubSub[*Snapshot]
	commands  chan command
	loopMu    sync.Mutex
	loopDone  chan struct{}

	status statusTracker
}

type command struct {
	fn   func(*Engine) error
	done chan error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// New creates an engine with nothing drawn.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:       cfg,
		logger:    logging.NewNopLogger(),
		snapshots: pubsub.NewPubSub[*Snapshot](pubsub.WithBufferSize(1), pubsub.WithPolicy(pubsub.DropOldest)),
		commands:  make(chan command, 64),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewRegistry()
	}
	e.logger = e.logger.With(logging.Component("engine"))

	e.graph = network.NewGraph(cfg.NetworkConfig())
	e.popup = interaction.NewController(e.graph, cfg.Popup)
	e.scheduler = animation.NewScheduler(e.graph, cfg.Animation,
		animation.WithStopFlag(e.stopped.Load),
		animation.WithRunObserver(e.onRun),
		animation.WithBetweenRuns(e.applyPendingResize),
		animation.WithLogger(e.logger),
	)
	e.status.transport = cfg.Telemetry.Transport
	e.publish(time.Now())
	return e
}

// Graph returns the graph. Renderers in the owning goroutine read it directly.
func (e *Engine) Graph() *network.Graph { return e.graph }

// Scheduler returns the animation scheduler.
func (e *Engine) Scheduler() *animation.Scheduler { return e.scheduler }

// Popup returns the popup controller that pointer events are delivered to.
func (e *Engine) Popup() *interaction.Controller { return e.popup }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config { return e.cfg }

// Metrics returns the metrics registry.
func (e *Engine) Metrics() *metrics.Registry { return e.metrics }

// Stop sets the cancellation flag: queued runs are dropped at dequeue and
// running forward passes stop before their next hop.
func (e *Engine) Stop() {
	if !e.stopped.Swap(true) {
		e.logger.Info("animation stopped")
	}
}

// Start clears the cancellation flag.
func (e *Engine) Start() {
	if e.stopped.Swap(false) {
		e.logger.Info("animation started")
	}
}

// Stopped reports the cancellation flag.
func (e *Engine) Stopped() bool { return e.stopped.Load() }

func (e *Engine) onRun(ev animation.RunEvent) {
	e.metrics.RecordRun(string(ev.Outcome))
	e.dirty = true
}

// statusTracker is read by health checks from other goroutines.
type statusTracker struct {
	mu          sync.Mutex
	transport   string
	connected   bool
	lastMessage time.Time
	decodeErrs  int64
	drawn       bool
	buffered    int
	epoch       int
}
