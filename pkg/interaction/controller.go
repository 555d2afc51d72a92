package interaction

import (
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// State of the shared popup.
type State int

const (
	Hidden State = iota
	Shown
	PendingHide
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	case PendingHide:
		return "pending_hide"
	default:
		return "unknown"
	}
}

// Config sizes the popup and its hide debounce.
type Config struct {
	HideDelay time.Duration `yaml:"hide_delay" toml:"hide_delay"`
	Width     float64       `yaml:"width" toml:"width"`
	Height    float64       `yaml:"height" toml:"height"`
	Spacing   float64       `yaml:"spacing" toml:"spacing"`
}

// DefaultConfig is a 240x340 popup, 15px right of the node, hidden 300ms
// after the pointer leaves.
func DefaultConfig() Config {
	return Config{HideDelay: 300 * time.Millisecond, Width: 240, Height: 340, Spacing: 15}
}

// View is the popup as a renderer sees it.
type View struct {
	Visible  bool                   `json:"visible"`
	State    string                 `json:"state"`
	Owner    *network.NodeID        `json:"owner,omitempty"`
	X        float64                `json:"x"`
	Y        float64                `json:"y"`
	Width    float64                `json:"width"`
	Height   float64                `json:"height"`
	Dragging bool                   `json:"dragging"`
	Payload  *network.Payload       `json:"payload,omitempty"`
	History  []network.HistoryEntry `json:"history,omitempty"`
}

// Controller is the single popup state machine. Every pointer event is
// delivered here; it reads node state from the graph but never changes
// layout or animation. Not safe for concurrent use.
type Controller struct {
	graph  *network.Graph
	config Config

	state    State
	owner    network.NodeID
	deadline time.Time
	dragging bool

	pos     visualization.Position
	payload network.Payload
	history []network.HistoryEntry
}

// NewController creates a hidden popup over graph and registers itself as
// the graph's popup sink.
func NewController(graph *network.Graph, config Config) *Controller {
	defaults := DefaultConfig()
	if config.HideDelay <= 0 {
		config.HideDelay = defaults.HideDelay
	}
	if config.Width <= 0 {
		config.Width = defaults.Width
	}
	if config.Height <= 0 {
		config.Height = defaults.Height
	}
	c := &Controller{graph: graph, config: config}
	graph.SetPopupSink(c)
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Owner returns the node that owns the popup, if shown.
func (c *Controller) Owner() (network.NodeID, bool) {
	return c.owner, c.state != Hidden
}

// Dragging reports whether a node drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// HoverEnterNode shows the popup for id, cancelling any pending hide.
func (c *Controller) HoverEnterNode(id network.NodeID) {
	if c.dragging && id != c.owner {
		return
	}
	c.show(id)
}

// HoverLeaveNode starts the hide debounce unless the pointer moved onto the
// popup.
func (c *Controller) HoverLeaveNode(id network.NodeID, enteringPopup bool, now time.Time) {
	if c.dragging || c.state != Shown || id != c.owner || enteringPopup {
		return
	}
	c.armHide(now)
}

// HoverEnterPopup keeps the popup open.
func (c *Controller) HoverEnterPopup() {
	if c.state == PendingHide {
		c.state = Shown
		c.deadline = time.Time{}
	}
}

// HoverLeavePopup starts the hide debounce unless the pointer went back to
// the owning node.
func (c *Controller) HoverLeavePopup(enteringNode bool, now time.Time) {
	if c.dragging || c.state != Shown || enteringNode {
		return
	}
	c.armHide(now)
}

// DragStart shows the popup for id immediately.
func (c *Controller) DragStart(id network.NodeID) {
	if _, ok := c.graph.Node(id); !ok {
		return
	}
	c.dragging = true
	c.show(id)
}

// DragMove moves the dragged node; the popup follows through Follow.
func (c *Controller) DragMove(id network.NodeID, x, y float64) error {
	n, ok := c.graph.Node(id)
	if !ok {
		return network.ErrNodeNotFound
	}
	return n.Drag(x, y)
}

// DragEnd finishes a drag. Releasing away from the popup hides it at once.
func (c *Controller) DragEnd(id network.NodeID, overPopup bool) {
	if !c.dragging {
		return
	}
	c.dragging = false
	if !overPopup {
		c.hide()
	}
}

// Tick applies an expired hide deadline.
func (c *Controller) Tick(now time.Time) {
	if c.state == PendingHide && !now.Before(c.deadline) {
		c.hide()
	}
}

// Reset hides the popup and forgets the owner, e.g. after a rebuild.
func (c *Controller) Reset() {
	c.dragging = false
	c.hide()
}

// Refresh implements network.PopupSink.
func (c *Controller) Refresh(id network.NodeID, payload network.Payload, history []network.HistoryEntry) {
	if c.state == Hidden || id != c.owner {
		return
	}
	c.payload = payload
	c.history = history
}

// Follow implements network.PopupSink.
func (c *Controller) Follow(id network.NodeID, pos visualization.Position) {
	if c.state == Hidden || id != c.owner {
		return
	}
	c.place(pos)
}

// View returns the popup for rendering.
func (c *Controller) View() View {
	v := View{
		Visible:  c.state != Hidden,
		State:    c.state.String(),
		Width:    c.config.Width,
		Height:   c.config.Height,
		Dragging: c.dragging,
	}
	if !v.Visible {
		return v
	}
	owner := c.owner
	payload := c.payload
	payload.Fields = append([]network.PayloadField(nil), c.payload.Fields...)
	v.Owner = &owner
	v.X, v.Y = c.pos.X, c.pos.Y
	v.Payload = &payload
	v.History = append([]network.HistoryEntry(nil), c.history...)
	return v
}

// Contains reports whether (x, y) is over the visible popup.
func (c *Controller) Contains(x, y float64) bool {
	if c.state == Hidden {
		return false
	}
	return x >= c.pos.X && x <= c.pos.X+c.config.Width &&
		y >= c.pos.Y && y <= c.pos.Y+c.config.Height
}

func (c *Controller) show(id network.NodeID) {
	n, ok := c.graph.Node(id)
	if !ok {
		return
	}
	c.state = Shown
	c.owner = id
	c.deadline = time.Time{}
	c.payload = n.Payload
	c.history = n.History()
	c.place(n.Pos)
}

func (c *Controller) armHide(now time.Time) {
	c.state = PendingHide
	c.deadline = now.Add(c.config.HideDelay)
}

func (c *Controller) hide() {
	c.state = Hidden
	c.owner = network.NodeID{}
	c.deadline = time.Time{}
	c.payload = network.Payload{}
	c.history = nil
}

// place anchors the popup right of the node, vertically centred on it.
func (c *Controller) place(node visualization.Position) {
	r := c.graph.Config().Layout.NodeRadius
	c.pos = visualization.Position{
		X: node.X + r + c.config.Spacing,
		Y: node.Y - c.config.Height/2,
	}
}
