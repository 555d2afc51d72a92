package network

import (
	"fmt"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// NodeID identifies a node by layer and position within the layer. IDs are
// stable across rebuilds of the same topology.
type NodeID struct {
	Layer int `json:"layer"`
	Index int `json:"index"`
}

func (id NodeID) String() string {
	return fmt.Sprintf("%d:%d", id.Layer, id.Index)
}

// PopupSink receives node updates for the shared popup. Implementations
// ignore calls for nodes that do not own the popup.
type PopupSink interface {
	Refresh(id NodeID, payload Payload, history []HistoryEntry)
	Follow(id NodeID, pos visualization.Position)
}

// Node is one neuron in the drawn graph.
type Node struct {
	ID        NodeID
	Kind      NodeKind
	Pos       visualization.Position
	Telemetry NodeTelemetry
	Payload   Payload
	Firing    bool

	history History
	graph   *Graph
}

func newNode(g *Graph, id NodeID, kind NodeKind, pos visualization.Position) *Node {
	n := &Node{ID: id, Kind: kind, Pos: pos, graph: g}
	n.Payload = n.buildPayload(0)
	return n
}

// Label is the popup title: "Input", "Hidden Layer k" or "Output".
func (n *Node) Label() string {
	return behaviourOf(n.Kind).label(n.ID.Layer)
}

// Primary returns the value used for history and colouring.
func (n *Node) Primary() telemetry.Value {
	return behaviourOf(n.Kind).primary(n.Telemetry)
}

// History returns the recent primary values, oldest first.
func (n *Node) History() []HistoryEntry {
	return n.history.Entries()
}

// UpdateData stores t, rebuilds the payload, updates the firing flag, records
// history and refreshes the popup when this node owns it.
func (n *Node) UpdateData(t NodeTelemetry, epoch int) {
	b := behaviourOf(n.Kind)
	n.Telemetry = t

	if b.fires && n.graph != nil && n.graph.config.FiringEnabled {
		if act, ok := t.Activation.Float(); ok {
			n.Firing = act >= n.graph.config.FiringThreshold
		}
	}
	n.history.Append(HistoryEntry{Epoch: epoch, Value: b.primary(t)})
	n.Payload = n.buildPayload(epoch)

	if n.graph != nil && n.graph.popup != nil {
		n.graph.popup.Refresh(n.ID, n.Payload, n.history.Entries())
	}
}

// Drag moves the node through the graph and keeps an open popup attached.
func (n *Node) Drag(x, y float64) error {
	if n.graph == nil {
		return ErrNotDrawn
	}
	if err := n.graph.MoveNode(n.ID, x, y); err != nil {
		return err
	}
	if n.graph.popup != nil {
		n.graph.popup.Follow(n.ID, n.Pos)
	}
	return nil
}

func (n *Node) buildPayload(epoch int) Payload {
	b := behaviourOf(n.Kind)
	return Payload{
		Title:  b.label(n.ID.Layer),
		Layer:  n.ID.Layer,
		Index:  n.ID.Index,
		Kind:   n.Kind.String(),
		Epoch:  epoch,
		Firing: n.Firing,
		Fields: b.fields(n.Telemetry),
	}
}
