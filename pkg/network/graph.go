package network

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

var (
	// ErrNodeNotFound is returned for IDs outside the drawn topology.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotDrawn is returned by operations that need a drawn graph.
	ErrNotDrawn = errors.New("graph not drawn")
)

// Config holds the graph's layout and firing settings.
type Config struct {
	Layout          visualization.LayoutConfig
	FiringEnabled   bool
	FiringThreshold float64
}

// DefaultConfig uses the default viewport and a 0.5 firing threshold.
func DefaultConfig() Config {
	return Config{
		Layout:          visualization.DefaultLayoutConfig(),
		FiringEnabled:   true,
		FiringThreshold: 0.5,
	}
}

// Link connects a node to a node of the next layer.
type Link struct {
	Source NodeID
	Target NodeID
	Weight telemetry.Value
	X1, Y1 float64
	X2, Y2 float64
}

// ApplyReport summarises one ApplyEpoch call.
type ApplyReport struct {
	Epoch        int
	NodesUpdated int
	LinksUpdated int
	Mismatches   []Mismatch
}

// Graph owns the drawn nodes and links. It is not safe for concurrent use.
type Graph struct {
	config Config
	layout *visualization.LayeredLayout
	popup  PopupSink

	layers   []int
	nodes    [][]*Node
	links    []*Link
	outgoing map[NodeID][]*Link
	incoming map[NodeID][]*Link

	epoch int
	loss  telemetry.Value
}

// NewGraph creates an empty graph.
func NewGraph(config Config) *Graph {
	return &Graph{
		config: config,
		layout: visualization.NewLayeredLayout(config.Layout),
	}
}

// SetPopupSink installs the receiver for popup refreshes.
func (g *Graph) SetPopupSink(sink PopupSink) {
	g.popup = sink
}

// Config returns the current configuration.
func (g *Graph) Config() Config {
	return g.config
}

// Rebuild discards the graph and draws layers. weights may be nil, leaving
// every link weight unavailable. On error the previous graph is kept.
func (g *Graph) Rebuild(layers []int, weights WeightLookup) error {
	positions, err := g.layout.Compute(layers)
	if err != nil {
		return fmt.Errorf("failed to lay out %v: %w", layers, err)
	}

	g.Clear()
	g.layers = append([]int(nil), layers...)
	g.nodes = make([][]*Node, len(layers))
	for k, layer := range positions {
		kind := KindOf(k, len(layers))
		g.nodes[k] = make([]*Node, len(layer))
		for i, pos := range layer {
			g.nodes[k][i] = newNode(g, NodeID{Layer: k, Index: i}, kind, pos)
		}
	}

	linkCount := 0
	for k := 0; k < len(layers)-1; k++ {
		linkCount += layers[k] * layers[k+1]
	}
	g.links = make([]*Link, 0, linkCount)
	g.outgoing = make(map[NodeID][]*Link)
	g.incoming = make(map[NodeID][]*Link)
	for k := 0; k < len(layers)-1; k++ {
		for _, src := range g.nodes[k] {
			for _, dst := range g.nodes[k+1] {
				link := &Link{
					Source: src.ID,
					Target: dst.ID,
					Weight: ResolveWeight(src.ID, dst.ID.Index, weights, g.layers),
					X1:     src.Pos.X,
					Y1:     src.Pos.Y,
					X2:     dst.Pos.X,
					Y2:     dst.Pos.Y,
				}
				g.links = append(g.links, link)
				g.outgoing[src.ID] = append(g.outgoing[src.ID], link)
				g.incoming[dst.ID] = append(g.incoming[dst.ID], link)
			}
		}
	}
	return nil
}

// ApplyEpoch merges rec into every node and link. Missing or mis-shaped data
// leaves the affected fields unavailable; it never fails.
func (g *Graph) ApplyEpoch(rec *telemetry.EpochRecord) ApplyReport {
	report := ApplyReport{}
	if rec == nil || !g.Drawn() {
		return report
	}
	report.Epoch = rec.Epoch
	fit := checkShape(rec, g.layers)
	report.Mismatches = fit.mismatches

	for k, layer := range g.nodes {
		for _, n := range layer {
			t := fit.withhold(k, behaviourOf(n.Kind).extract(rec, n.ID))
			n.UpdateData(t, rec.Epoch)
			report.NodesUpdated++
		}
	}

	var weights WeightLookup
	if rec.WeightsAndBiases != nil {
		weights = rec.WeightsAndBiases
	}
	for _, link := range g.links {
		if fit.links[link.Source.Layer] {
			link.Weight = telemetry.UnavailableValue()
		} else {
			link.Weight = ResolveWeight(link.Source, link.Target.Index, weights, g.layers)
		}
		report.LinksUpdated++
	}

	g.epoch = rec.Epoch
	g.loss = rec.Loss
	return report
}

// MoveNode repositions one node and the endpoints of its incident links.
func (g *Graph) MoveNode(id NodeID, x, y float64) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	n.Pos = visualization.Position{X: x, Y: y}
	for _, link := range g.outgoing[id] {
		link.X1, link.Y1 = x, y
	}
	for _, link := range g.incoming[id] {
		link.X2, link.Y2 = x, y
	}
	return nil
}

// Relayout recomputes every position for a new viewport. Dragged nodes snap
// back to their layout slots.
func (g *Graph) Relayout(viewport visualization.LayoutConfig) error {
	layout := visualization.NewLayeredLayout(viewport)
	if !g.Drawn() {
		g.config.Layout = viewport
		g.layout = layout
		return nil
	}
	positions, err := layout.Compute(g.layers)
	if err != nil {
		return fmt.Errorf("failed to relayout: %w", err)
	}
	g.config.Layout = viewport
	g.layout = layout
	for k, layer := range positions {
		for i, pos := range layer {
			g.nodes[k][i].Pos = pos
		}
	}
	for _, link := range g.links {
		src, dst := g.nodes[link.Source.Layer][link.Source.Index], g.nodes[link.Target.Layer][link.Target.Index]
		link.X1, link.Y1 = src.Pos.X, src.Pos.Y
		link.X2, link.Y2 = dst.Pos.X, dst.Pos.Y
	}
	return nil
}

// Clear releases every node and link.
func (g *Graph) Clear() {
	for _, layer := range g.nodes {
		for _, n := range layer {
			n.graph = nil
			n.history.Reset()
		}
	}
	g.layers = nil
	g.nodes = nil
	g.links = nil
	g.outgoing = nil
	g.incoming = nil
	g.epoch = 0
	g.loss = telemetry.UnavailableValue()
}

// Drawn reports whether a topology is currently drawn.
func (g *Graph) Drawn() bool {
	return len(g.layers) > 0
}

// Layers returns a copy of the drawn layer sizes.
func (g *Graph) Layers() []int {
	return append([]int(nil), g.layers...)
}

// Node returns the node with id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id.Layer < 0 || id.Layer >= len(g.nodes) {
		return nil, false
	}
	layer := g.nodes[id.Layer]
	if id.Index < 0 || id.Index >= len(layer) {
		return nil, false
	}
	return layer[id.Index], true
}

// Nodes returns every node, layer by layer.
func (g *Graph) Nodes() []*Node {
	var out []*Node
	for _, layer := range g.nodes {
		out = append(out, layer...)
	}
	return out
}

// Layer returns the nodes of layer k.
func (g *Graph) Layer(k int) []*Node {
	if k < 0 || k >= len(g.nodes) {
		return nil
	}
	return g.nodes[k]
}

// Links returns every link.
func (g *Graph) Links() []*Link {
	return g.links
}

// Outgoing returns the links leaving id.
func (g *Graph) Outgoing(id NodeID) []*Link {
	return g.outgoing[id]
}

// Incoming returns the links entering id.
func (g *Graph) Incoming(id NodeID) []*Link {
	return g.incoming[id]
}

// Endpoints returns the current coordinates of the link from src to dst.
func (g *Graph) Endpoints(src, dst NodeID) (from, to visualization.Position, ok bool) {
	a, okA := g.Node(src)
	b, okB := g.Node(dst)
	if !okA || !okB {
		return from, to, false
	}
	return a.Pos, b.Pos, true
}

// NodeAt returns the node whose circle contains (x, y), preferring the
// closest.
func (g *Graph) NodeAt(x, y float64) (*Node, bool) {
	r := g.config.Layout.NodeRadius
	var best *Node
	bestDist := r*r + 1e-9
	for _, layer := range g.nodes {
		for _, n := range layer {
			dx, dy := n.Pos.X-x, n.Pos.Y-y
			if d := dx*dx + dy*dy; d <= bestDist {
				best, bestDist = n, d
			}
		}
	}
	return best, best != nil
}

// Epoch returns the last applied epoch.
func (g *Graph) Epoch() int { return g.epoch }

// Loss returns the last applied loss.
func (g *Graph) Loss() telemetry.Value { return g.loss }
