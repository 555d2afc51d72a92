package animation

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// run is one record's forward+backward animation.
type run struct {
	id      string
	epoch   int
	seeds   []network.NodeID
	fwdHop  time.Duration
	bwdHop  time.Duration
	layers  int
	hop     int
	started time.Time
	// hopStart and hopDur are shared by every token of the current hop.
	hopStart time.Time
	hopDur   time.Duration
	tokens   []Token
}

// Scheduler plays one run per epoch record, strictly in arrival order, on
// an explicit clock driven by Frame. It is not safe for concurrent use; the
// stop function may be backed by an atomic flag set elsewhere.
type Scheduler struct {
	graph   *network.Graph
	config  Config
	stopped func() bool
	onRun   func(RunEvent)
	between func()
	logger  logging.Logger

	queue   []*run
	current *run
	state   State
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStopFlag installs the cancellation flag checked at dequeue and before
// each hop.
func WithStopFlag(stopped func() bool) Option {
	return func(s *Scheduler) { s.stopped = stopped }
}

// WithRunObserver receives every finished run.
func WithRunObserver(fn func(RunEvent)) Option {
	return func(s *Scheduler) { s.onRun = fn }
}

// WithBetweenRuns installs a hook called whenever no run is playing and the
// scheduler is about to start the next one. Layout changes made by the hook
// are seen by the whole run.
func WithBetweenRuns(fn func()) Option {
	return func(s *Scheduler) { s.between = fn }
}

// WithLogger sets the scheduler's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates an idle scheduler animating over graph.
func NewScheduler(graph *network.Graph, config Config, opts ...Option) *Scheduler {
	defaults := DefaultConfig()
	if config.ScaleFactor <= 0 {
		config.ScaleFactor = defaults.ScaleFactor
	}
	config.MinHop = validation.DefaultOrDuration(config.MinHop, defaults.MinHop)
	if config.MaxHop < config.MinHop {
		config.MaxHop = config.MinHop
	}
	config.QueueSize = validation.DefaultOrInt(config.QueueSize, defaults.QueueSize)
	s := &Scheduler{
		graph:   graph,
		config:  config,
		stopped: func() bool { return false },
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("animation"))
	return s
}

// HopDuration converts a measured pass time in seconds into a hop time.
func (s *Scheduler) HopDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return s.config.MinHop
	}
	d := seconds * s.config.ScaleFactor * float64(time.Second)
	if d > float64(s.config.MaxHop) {
		return s.config.MaxHop
	}
	return validation.ClampDuration(time.Duration(d), s.config.MinHop, s.config.MaxHop)
}

// Enqueue queues a run for rec and returns its run ID. When the queue is
// full the oldest queued run is dropped.
func (s *Scheduler) Enqueue(rec *telemetry.EpochRecord) string {
	if rec == nil {
		return ""
	}
	r := &run{
		id:     uuid.NewString(),
		epoch:  rec.Epoch,
		fwdHop: s.HopDuration(rec.ForwardDurationSeconds()),
		bwdHop: s.HopDuration(rec.BackwardDurationSeconds()),
	}
	for i := 0; i < rec.Forward.Input.Len(0); i++ {
		if rec.Forward.Input.At(0, i).IsAvailable() {
			r.seeds = append(r.seeds, network.NodeID{Layer: 0, Index: i})
		}
	}

	if len(s.queue) >= s.config.QueueSize {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		s.finish(oldest, OutcomeDropped)
	}
	s.queue = append(s.queue, r)
	return r.id
}

// Frame advances the clock to now: starts the next run when idle, spawns and
// retires hops, and recomputes token positions from the graph. It reports
// whether more frames are needed.
func (s *Scheduler) Frame(now time.Time) bool {
	for {
		if s.current == nil && !s.dequeue(now) {
			return false
		}
		if !s.advance(now) {
			// Run finished within this frame; a queued run may start at now.
			continue
		}
		return true
	}
}

// dequeue starts the next run that is not dropped by the stop flag.
func (s *Scheduler) dequeue(now time.Time) bool {
	if s.between != nil {
		s.between()
	}
	for len(s.queue) > 0 {
		r := s.queue[0]
		s.queue = s.queue[1:]
		if s.stopped() {
			s.finish(r, OutcomeStopped)
			continue
		}
		r.layers = len(s.graph.Layers())
		r.started = now
		s.current = r
		s.state = ForwardPlaying
		s.logger.Debug("run started", logging.RunID(r.id), logging.Epoch(r.epoch))
		if !s.spawnForward(now, 0, r.seeds) {
			s.startBackward(now)
		}
		return true
	}
	s.state = Idle
	return false
}

// advance retires every hop that has ended by now and reports whether the
// current run is still playing.
func (s *Scheduler) advance(now time.Time) bool {
	r := s.current
	for r == s.current && s.current != nil {
		end := r.hopStart.Add(r.hopDur)
		if now.Before(end) {
			s.position(now)
			return true
		}
		s.retireHop(end)
	}
	return s.current != nil
}

// retireHop destroys the finished hop's tokens and queues the follow-up,
// starting it at end.
func (s *Scheduler) retireHop(end time.Time) {
	r := s.current
	finished := r.tokens
	r.tokens = nil

	if s.state == BackwardPlaying {
		s.finish(r, OutcomeCompleted)
		return
	}

	next := r.hop + 1
	if next >= r.layers-1 {
		s.startBackward(end)
		return
	}
	seen := make(map[network.NodeID]bool)
	var frontier []network.NodeID
	for _, tok := range finished {
		if !seen[tok.To] {
			seen[tok.To] = true
			frontier = append(frontier, tok.To)
		}
	}
	if !s.spawnForward(end, next, frontier) {
		s.startBackward(end)
	}
}

// spawnForward seeds one token on every outgoing link of frontier. It
// returns false when the hop produced no tokens.
func (s *Scheduler) spawnForward(at time.Time, hop int, frontier []network.NodeID) bool {
	r := s.current
	if s.stopped() {
		s.finish(r, OutcomeStopped)
		return true
	}
	r.hop = hop
	r.hopStart = at
	r.hopDur = r.fwdHop
	r.tokens = r.tokens[:0]
	for _, id := range frontier {
		for _, link := range s.graph.Outgoing(id) {
			r.tokens = append(r.tokens, Token{RunID: r.id, Hop: hop, Direction: Forward, From: link.Source, To: link.Target})
		}
	}
	return len(r.tokens) > 0
}

// startBackward launches one reverse token per link, all at once.
func (s *Scheduler) startBackward(at time.Time) {
	r := s.current
	if r == nil {
		return
	}
	if s.stopped() {
		s.finish(r, OutcomeStopped)
		return
	}
	s.state = BackwardPlaying
	r.hop = r.layers - 1
	r.hopStart = at
	r.hopDur = r.bwdHop
	r.tokens = r.tokens[:0]
	for _, link := range s.graph.Links() {
		r.tokens = append(r.tokens, Token{RunID: r.id, Hop: r.hop, Direction: Backward, From: link.Target, To: link.Source})
	}
	if len(r.tokens) == 0 {
		s.finish(r, OutcomeCompleted)
	}
}

// position interpolates every token between its link's current endpoints.
func (s *Scheduler) position(now time.Time) {
	r := s.current
	fraction := 1.0
	if r.hopDur > 0 {
		fraction = float64(now.Sub(r.hopStart)) / float64(r.hopDur)
	}
	kept := r.tokens[:0]
	for _, tok := range r.tokens {
		from, to, ok := s.graph.Endpoints(tok.From, tok.To)
		if !ok {
			continue
		}
		tok.Progress = math.Max(0, math.Min(1, fraction))
		tok.Pos = visualization.Lerp(from, to, tok.Progress)
		kept = append(kept, tok)
	}
	r.tokens = kept
}

func (s *Scheduler) finish(r *run, outcome Outcome) {
	if r == s.current {
		s.current = nil
		s.state = Idle
	}
	s.logger.Debug("run finished",
		logging.RunID(r.id),
		logging.Epoch(r.epoch),
		logging.String("outcome", string(outcome)),
	)
	if s.onRun != nil {
		s.onRun(RunEvent{RunID: r.id, Epoch: r.epoch, Outcome: outcome, Hops: r.hop})
	}
}

// Cancel purges the queue and tears down the in-flight run.
func (s *Scheduler) Cancel() {
	queued := s.queue
	s.queue = nil
	for _, r := range queued {
		s.finish(r, OutcomeCancelled)
	}
	if s.current != nil {
		s.finish(s.current, OutcomeCancelled)
	}
	s.state = Idle
}

// State returns the playback state.
func (s *Scheduler) State() State { return s.state }

// QueueLen returns the number of runs waiting.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// Playing reports whether a run is in flight.
func (s *Scheduler) Playing() bool { return s.current != nil }

// Busy reports whether a run is playing or queued.
func (s *Scheduler) Busy() bool { return s.current != nil || len(s.queue) > 0 }

// CurrentRun returns the playing run's ID and epoch.
func (s *Scheduler) CurrentRun() (id string, epoch int, ok bool) {
	if s.current == nil {
		return "", 0, false
	}
	return s.current.id, s.current.epoch, true
}

// Tokens returns a copy of the in-flight tokens as of the last Frame.
func (s *Scheduler) Tokens() []Token {
	if s.current == nil {
		return nil
	}
	out := make([]Token, len(s.current.tokens))
	copy(out, s.current.tokens)
	return out
}
