package visualization

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// TestLayeredLayoutPositions checks the spacing formulas on the default topology
func TestLayeredLayoutPositions(t *testing.T) {
	layout := NewLayeredLayout(LayoutConfig{Width: 1000, Height: 500, NodeRadius: 20})

	positions, err := layout.Compute([]int{4, 4, 2, 1})
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	if len(positions) != 4 {
		t.Fatalf("Expected 4 layers, got %d", len(positions))
	}

	// hSpacing = 1000/5 = 200
	wantX := []float64{200, 400, 600, 800}
	for k, layer := range positions {
		for i, pos := range layer {
			if pos.X != wantX[k] {
				t.Errorf("Layer %d node %d: expected x=%f, got %f", k, i, wantX[k], pos.X)
			}
		}
	}

	// Layer of 4: vSpacing = 100
	for i, pos := range positions[0] {
		if want := 100 * float64(i+1); pos.Y != want {
			t.Errorf("Input node %d: expected y=%f, got %f", i, want, pos.Y)
		}
	}

	// Single output node sits at mid-height
	if positions[3][0].Y != 250 {
		t.Errorf("Output node should be centered, got y=%f", positions[3][0].Y)
	}
}

// TestLayeredLayoutInvalid tests rejected inputs
func TestLayeredLayoutInvalid(t *testing.T) {
	layout := NewLayeredLayout(DefaultLayoutConfig())

	tests := []struct {
		name   string
		layers []int
	}{
		{"empty", nil},
		{"single layer", []int{3}},
		{"zero layer", []int{3, 0, 1}},
		{"negative layer", []int{3, -2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := layout.Compute(tt.layers)
			if !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("Expected ErrInvalidTopology, got %v", err)
			}
		})
	}

	viewports := []LayoutConfig{
		{Width: 0, Height: 100},
		{Width: 100, Height: -1},
		{Width: math.NaN(), Height: 100},
		{Width: 100, Height: math.Inf(1)},
		{Width: math.Inf(-1), Height: math.Inf(-1)},
	}
	for _, vp := range viewports {
		bad := NewLayeredLayout(vp)
		if _, err := bad.Compute([]int{1, 1}); !errors.Is(err, ErrInvalidTopology) {
			t.Errorf("Expected ErrInvalidTopology for viewport %gx%g, got %v", vp.Width, vp.Height, err)
		}
	}
}

// TestLayeredLayoutDeterministic tests that repeated computation is identical
func TestLayeredLayoutDeterministic(t *testing.T) {
	layout := NewLayeredLayout(DefaultLayoutConfig())
	a, _ := layout.Compute([]int{3, 5, 2})
	b, _ := layout.Compute([]int{3, 5, 2})

	for k := range a {
		for i := range a[k] {
			if a[k][i] != b[k][i] {
				t.Errorf("Layout not deterministic at (%d,%d): %v vs %v", k, i, a[k][i], b[k][i])
			}
		}
	}
}

func TestScaleAndLerp(t *testing.T) {
	p := Scale(Position{X: 480, Y: 270}, Viewport{960, 540}, Viewport{96, 27})
	if math.Abs(p.X-48) > 1e-9 || math.Abs(p.Y-13.5) > 1e-9 {
		t.Errorf("Unexpected scaled position %v", p)
	}

	mid := Lerp(Position{0, 0}, Position{10, 20}, 0.5)
	if mid != (Position{5, 10}) {
		t.Errorf("Expected midpoint (5,10), got %v", mid)
	}
	if end := Lerp(Position{0, 0}, Position{10, 20}, 3); end != (Position{10, 20}) {
		t.Errorf("Lerp should clamp, got %v", end)
	}

	lo, hi := Bounds([]Position{{3, 9}, {1, 4}, {7, 2}})
	if lo != (Position{1, 2}) || hi != (Position{7, 9}) {
		t.Errorf("Unexpected bounds %v %v", lo, hi)
	}
}

// TestSceneExportJSON tests JSON export
func TestSceneExportJSON(t *testing.T) {
	scene := &Scene{
		Width:  960,
		Height: 540,
		Nodes:  []SceneNode{{Layer: 0, Index: 0, X: 320, Y: 270, Kind: "input"}},
	}

	data, err := scene.ExportJSON()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	nodes, ok := decoded["nodes"].([]interface{})
	if !ok || len(nodes) != 1 {
		t.Errorf("Expected 1 node in export, got %v", decoded["nodes"])
	}
	if links, ok := decoded["links"].([]interface{}); !ok || len(links) != 0 {
		t.Errorf("Expected empty links array, got %v", decoded["links"])
	}
}
