package tui

import (
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

func drawnEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(config.Default())
	if err := e.Draw(telemetry.TopologyFromLayers([]int{4, 4, 2, 1}), nil); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	return e
}

func TestProjectorRoundTrip(t *testing.T) {
	p := Projector{Width: 960, Height: 540, Cols: 96, Rows: 27}

	cx, cy := p.ToCell(485, 215)
	if cx != 48 || cy != 10 {
		t.Errorf("ToCell = %d,%d, want 48,10", cx, cy)
	}
	x, y := p.ToWorld(cx, cy)
	if x != 485 || y != 210 {
		t.Errorf("ToWorld = %g,%g, want 485,210", x, y)
	}
	if w, h := p.Scale(240, 340); w != 24 || h != 17 {
		t.Errorf("Scale = %d,%d, want 24,17", w, h)
	}
	if cx, cy := (Projector{}).ToCell(10, 10); cx != 0 || cy != 0 {
		t.Errorf("zero projector ToCell = %d,%d", cx, cy)
	}
}

func TestDrawSnapshotNodes(t *testing.T) {
	e := drawnEngine(t)
	p := Projector{Width: 960, Height: 540, Cols: 120, Rows: 40}

	c := NewCanvas(p.Cols, p.Rows)
	DrawSnapshot(c, e.Snapshot(), p)

	out := c.String()
	if got := strings.Count(out, "●"); got != 11 {
		t.Errorf("nodes drawn = %d, want 11", got)
	}
	if !strings.Contains(out, "·") {
		t.Error("no links drawn")
	}
	n, _ := e.Graph().Node(network.NodeID{Layer: 0, Index: 0})
	x, y := p.ToCell(n.Pos.X, n.Pos.Y)
	if _, st := c.At(x, y); st != StyleNodeUnknown {
		t.Errorf("node without telemetry style = %v, want unknown", st)
	}
}

func TestDrawSnapshotUndrawn(t *testing.T) {
	e := engine.New(config.Default())
	c := NewCanvas(10, 4)
	DrawSnapshot(c, e.Snapshot(), Projector{Width: 960, Height: 540, Cols: 10, Rows: 4})
	if strings.TrimSpace(strings.ReplaceAll(c.String(), "\n", "")) != "" {
		t.Errorf("undrawn snapshot painted:\n%s", c.String())
	}
}

func TestDrawSnapshotPopup(t *testing.T) {
	e := drawnEngine(t)
	id := network.NodeID{Layer: 1, Index: 2}
	e.Popup().HoverEnterNode(id)

	p := Projector{Width: 960, Height: 540, Cols: 120, Rows: 40}
	c := NewCanvas(p.Cols, p.Rows)
	DrawSnapshot(c, e.Snapshot(), p)

	out := c.String()
	if !strings.Contains(out, "Hidden Layer 1") {
		t.Errorf("popup title missing:\n%s", out)
	}
	if !strings.Contains(out, "N/A") {
		t.Errorf("unavailable fields should read N/A:\n%s", out)
	}
	if !strings.Contains(out, "┌") {
		t.Error("popup border missing")
	}
}

func TestSparkline(t *testing.T) {
	h := []network.HistoryEntry{
		{Epoch: 1, Value: telemetry.ScalarValue(0)},
		{Epoch: 2, Value: telemetry.UnavailableValue()},
		{Epoch: 3, Value: telemetry.ScalarValue(1)},
	}
	if got := sparkline(h); got != "▁ █" {
		t.Errorf("sparkline = %q", got)
	}
	flat := []network.HistoryEntry{{Value: telemetry.ScalarValue(2)}, {Value: telemetry.ScalarValue(2)}}
	if got := sparkline(flat); got != "▅▅" {
		t.Errorf("flat sparkline = %q", got)
	}
}
