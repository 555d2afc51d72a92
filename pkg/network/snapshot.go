package network

import (
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// NodeSnapshot is an immutable copy of a node.
type NodeSnapshot struct {
	ID        NodeID         `json:"id"`
	Kind      string         `json:"kind"`
	Label     string         `json:"label"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Firing    bool           `json:"firing"`
	Telemetry NodeTelemetry  `json:"telemetry"`
	Payload   Payload        `json:"payload"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// LinkSnapshot is an immutable copy of a link.
type LinkSnapshot struct {
	Source NodeID          `json:"source"`
	Target NodeID          `json:"target"`
	Weight telemetry.Value `json:"weight"`
	X1     float64         `json:"x1"`
	Y1     float64         `json:"y1"`
	X2     float64         `json:"x2"`
	Y2     float64         `json:"y2"`
}

// Snapshot is a point-in-time copy of the graph for renderers.
type Snapshot struct {
	Layers []int           `json:"layers"`
	Epoch  int             `json:"epoch"`
	Loss   telemetry.Value `json:"loss"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Nodes  []NodeSnapshot  `json:"nodes"`
	Links  []LinkSnapshot  `json:"links"`
}

// Snapshot copies the current graph.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Layers: g.Layers(),
		Epoch:  g.epoch,
		Loss:   g.loss,
		Width:  g.config.Layout.Width,
		Height: g.config.Layout.Height,
		Nodes:  make([]NodeSnapshot, 0, len(g.Nodes())),
		Links:  make([]LinkSnapshot, 0, len(g.links)),
	}
	for _, layer := range g.nodes {
		for _, n := range layer {
			s.Nodes = append(s.Nodes, n.snapshot())
		}
	}
	for _, l := range g.links {
		s.Links = append(s.Links, LinkSnapshot{
			Source: l.Source, Target: l.Target, Weight: l.Weight,
			X1: l.X1, Y1: l.Y1, X2: l.X2, Y2: l.Y2,
		})
	}
	return s
}

func (n *Node) snapshot() NodeSnapshot {
	payload := n.Payload
	payload.Fields = append([]PayloadField(nil), n.Payload.Fields...)
	return NodeSnapshot{
		ID:        n.ID,
		Kind:      n.Kind.String(),
		Label:     n.Label(),
		X:         n.Pos.X,
		Y:         n.Pos.Y,
		Firing:    n.Firing,
		Telemetry: n.Telemetry,
		Payload:   payload,
		History:   n.history.Entries(),
	}
}

// Node returns the snapshot of id.
func (s Snapshot) Node(id NodeID) (NodeSnapshot, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}

// Scene converts the snapshot to the exportable scene form.
func (s Snapshot) Scene() *visualization.Scene {
	scene := &visualization.Scene{
		Width:  s.Width,
		Height: s.Height,
		Nodes:  make([]visualization.SceneNode, 0, len(s.Nodes)),
		Links:  make([]visualization.SceneLink, 0, len(s.Links)),
	}
	for _, n := range s.Nodes {
		scene.Nodes = append(scene.Nodes, visualization.SceneNode{
			Layer: n.ID.Layer, Index: n.ID.Index, X: n.X, Y: n.Y, Kind: n.Kind, Firing: n.Firing,
		})
	}
	for _, l := range s.Links {
		scene.Links = append(scene.Links, visualization.SceneLink{
			SourceLayer: l.Source.Layer, SourceIndex: l.Source.Index,
			TargetLayer: l.Target.Layer, TargetIndex: l.Target.Index,
			X1: l.X1, Y1: l.Y1, X2: l.X2, Y2: l.Y2,
			Weight: l.Weight.String(),
		})
	}
	return scene
}
