package animation

import (
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// State is the scheduler's playback state.
type State int

const (
	Idle State = iota
	ForwardPlaying
	BackwardPlaying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ForwardPlaying:
		return "forward"
	case BackwardPlaying:
		return "backward"
	default:
		return "unknown"
	}
}

// Direction of a token relative to its link.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	// OutcomeStopped covers runs dropped at dequeue and runs halted between
	// hops by the stop flag.
	OutcomeStopped   Outcome = "stopped"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDropped   Outcome = "dropped"
)

// RunEvent reports the end of a run.
type RunEvent struct {
	RunID   string
	Epoch   int
	Outcome Outcome
	Hops    int
}

// Token is a light travelling along one link for one hop.
type Token struct {
	RunID     string                 `json:"run_id"`
	Hop       int                    `json:"hop"`
	Direction Direction              `json:"direction"`
	From      network.NodeID         `json:"from"`
	To        network.NodeID         `json:"to"`
	Progress  float64                `json:"progress"`
	Pos       visualization.Position `json:"pos"`
}

// Config tunes playback.
type Config struct {
	// ScaleFactor stretches the trainer's measured pass time into a hop time.
	ScaleFactor float64       `yaml:"scale_factor" toml:"scale_factor"`
	MinHop      time.Duration `yaml:"min_hop" toml:"min_hop"`
	MaxHop      time.Duration `yaml:"max_hop" toml:"max_hop"`
	QueueSize   int           `yaml:"queue_size" toml:"queue_size"`
}

// DefaultConfig returns the playback defaults.
func DefaultConfig() Config {
	return Config{
		ScaleFactor: 50,
		MinHop:      150 * time.Millisecond,
		MaxHop:      3 * time.Second,
		QueueSize:   32,
	}
}
