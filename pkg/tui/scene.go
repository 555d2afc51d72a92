package tui

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// Projector maps engine coordinates onto canvas cells.
type Projector struct {
	Width, Height float64
	Cols, Rows    int
}

// ToCell returns the cell containing (x, y).
func (p Projector) ToCell(x, y float64) (int, int) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, 0
	}
	cx := int(math.Floor(x / p.Width * float64(p.Cols)))
	cy := int(math.Floor(y / p.Height * float64(p.Rows)))
	return cx, cy
}

// ToWorld returns the engine coordinates of the centre of cell (cx, cy).
func (p Projector) ToWorld(cx, cy int) (float64, float64) {
	if p.Cols <= 0 || p.Rows <= 0 {
		return 0, 0
	}
	x := (float64(cx) + 0.5) * p.Width / float64(p.Cols)
	y := (float64(cy) + 0.5) * p.Height / float64(p.Rows)
	return x, y
}

// Scale converts an engine length to cells along each axis.
func (p Projector) Scale(w, h float64) (int, int) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, 0
	}
	return int(math.Round(w / p.Width * float64(p.Cols))), int(math.Round(h / p.Height * float64(p.Rows)))
}

// DrawSnapshot paints links, nodes, tokens and the popup, in that order.
func DrawSnapshot(c *Canvas, snap *engine.Snapshot, p Projector) {
	if snap == nil || !snap.Drawn {
		return
	}
	for _, l := range snap.Graph.Links {
		x0, y0 := p.ToCell(l.X1, l.Y1)
		x1, y1 := p.ToCell(l.X2, l.Y2)
		c.Line(x0, y0, x1, y1, '·', linkStyle(l.Weight))
	}
	for _, n := range snap.Graph.Nodes {
		x, y := p.ToCell(n.X, n.Y)
		if n.Firing {
			c.Set(x, y, '✸', StyleFiring)
			continue
		}
		c.Set(x, y, '●', nodeStyle(n))
	}
	for _, t := range snap.Tokens {
		x, y := p.ToCell(t.Pos.X, t.Pos.Y)
		c.Set(x, y, '◆', StyleToken)
	}
	drawPopup(c, snap, p)
}

func linkStyle(w telemetry.Value) Style {
	f, ok := w.Float()
	switch {
	case !ok:
		return StyleLinkUnknown
	case f < 0:
		return StyleLinkNegative
	default:
		return StyleLinkPositive
	}
}

// nodeStyle buckets the node's primary value: activation for neurons,
// the input value for inputs.
func nodeStyle(n network.NodeSnapshot) Style {
	v := n.Telemetry.Activation
	if n.Kind == network.KindInput.String() {
		v = n.Telemetry.InputValue
	}
	f, ok := v.Float()
	switch {
	case !ok:
		return StyleNodeUnknown
	case f < 0.33:
		return StyleNodeLow
	case f < 0.66:
		return StyleNodeMid
	default:
		return StyleNodeHigh
	}
}

func drawPopup(c *Canvas, snap *engine.Snapshot, p Projector) {
	v := snap.Popup
	if !v.Visible || v.Payload == nil {
		return
	}
	x, y := p.ToCell(v.X, v.Y)
	w, h := p.Scale(v.Width, v.Height)

	lines := popupLines(v.Payload, v.History)
	for _, l := range lines {
		w = max(w, len([]rune(l))+4)
	}
	h = max(h, len(lines)+2)

	cols, rows := c.Size()
	x = min(max(x, 0), max(cols-w, 0))
	y = min(max(y, 0), max(rows-h, 0))

	c.Box(x, y, w, h, StylePopupBorder)
	for i, l := range lines {
		if i+1 >= h-1 {
			break
		}
		st := StylePopupText
		if i == 0 {
			st = StylePopupTitle
		}
		c.Text(x+2, y+1+i, l, st)
	}
}

func popupLines(pl *network.Payload, history []network.HistoryEntry) []string {
	lines := []string{pl.Title, fmt.Sprintf("epoch %d", pl.Epoch)}
	for _, f := range pl.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label, f.Text))
	}
	if pl.Firing {
		lines = append(lines, "firing")
	}
	if len(history) > 0 {
		lines = append(lines, "history "+sparkline(history))
	}
	return lines
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the available history values scaled to their range.
func sparkline(history []network.HistoryEntry) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range history {
		if f, ok := e.Value.Float(); ok {
			lo, hi = math.Min(lo, f), math.Max(hi, f)
		}
	}
	out := make([]rune, 0, len(history))
	for _, e := range history {
		f, ok := e.Value.Float()
		switch {
		case !ok:
			out = append(out, ' ')
		case hi == lo:
			out = append(out, sparks[len(sparks)/2])
		default:
			i := int((f - lo) / (hi - lo) * float64(len(sparks)-1))
			out = append(out, sparks[i])
		}
	}
	return string(out)
}
