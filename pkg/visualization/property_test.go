package visualization

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestLayoutProperties checks layout invariants over random topologies
func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	layout := NewLayeredLayout(LayoutConfig{Width: 960, Height: 540, NodeRadius: 20})

	sizesGen := gen.SliceOfN(8, gen.IntRange(1, 12))
	depthGen := gen.IntRange(2, 8)

	properties.Property("one position per node", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			positions, err := layout.Compute(layers)
			if err != nil || len(positions) != len(layers) {
				return false
			}
			for k, n := range layers {
				if len(positions[k]) != n {
					return false
				}
			}
			return true
		},
		sizesGen, depthGen,
	))

	properties.Property("positions stay strictly inside the viewport", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			positions, _ := layout.Compute(layers)
			for _, layer := range positions {
				for _, p := range layer {
					if p.X <= 0 || p.X >= 960 || p.Y <= 0 || p.Y >= 540 {
						return false
					}
				}
			}
			return true
		},
		sizesGen, depthGen,
	))

	properties.Property("layers are ordered left to right and nodes top to bottom", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			positions, _ := layout.Compute(layers)
			for k := range positions {
				if k > 0 && positions[k][0].X <= positions[k-1][0].X {
					return false
				}
				for i := 1; i < len(positions[k]); i++ {
					if positions[k][i].Y <= positions[k][i-1].Y {
						return false
					}
				}
			}
			return true
		},
		sizesGen, depthGen,
	))

	properties.Property("compute is deterministic", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			a, _ := layout.Compute(layers)
			b, _ := layout.Compute(layers)
			for k := range a {
				for i := range a[k] {
					if a[k][i] != b[k][i] {
						return false
					}
				}
			}
			return true
		},
		sizesGen, depthGen,
	))

	properties.TestingRun(t)
}
