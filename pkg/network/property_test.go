package network

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

func expectedLinks(layers []int) int {
	total := 0
	for k := 0; k < len(layers)-1; k++ {
		total += layers[k] * layers[k+1]
	}
	return total
}

func expectedNodes(layers []int) int {
	total := 0
	for _, n := range layers {
		total += n
	}
	return total
}

func finiteOrUnavailable(v telemetry.Value) bool {
	if !v.IsAvailable() {
		return true
	}
	if f, ok := v.Scalar(); ok {
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	for _, f := range v.Series() {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// TestGraphInvariants verifies graph invariants over random topologies
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	sizesGen := gen.SliceOfN(6, gen.IntRange(1, 8))
	depthGen := gen.IntRange(2, 6)

	properties.Property("rebuild yields sum(n) nodes and sum(n_k*n_k+1) links", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			g := NewGraph(DefaultConfig())
			if err := g.Rebuild(layers, nil); err != nil {
				return false
			}
			return len(g.Nodes()) == expectedNodes(layers) && len(g.Links()) == expectedLinks(layers)
		},
		sizesGen, depthGen,
	))

	properties.Property("clear then rebuild matches a fresh rebuild", prop.ForAll(
		func(sizes []int, depth int) bool {
			layers := sizes[:depth]
			g := NewGraph(DefaultConfig())
			g.Rebuild([]int{3, 3}, nil)
			g.Clear()
			g.Rebuild(layers, nil)

			fresh := NewGraph(DefaultConfig())
			fresh.Rebuild(layers, nil)
			return len(g.Nodes()) == len(fresh.Nodes()) && len(g.Links()) == len(fresh.Links())
		},
		sizesGen, depthGen,
	))

	properties.Property("apply epoch never produces non-finite telemetry", prop.ForAll(
		func(sizes []int, depth int, drawnSizes []int, seed int64) bool {
			layers := sizes[:depth]
			// Train a network that may disagree with the drawn one.
			syn, err := telemetry.NewSynthesizer(telemetry.TopologyFromLayers(drawnSizes[:depth]), seed)
			if err != nil {
				return false
			}
			g := NewGraph(DefaultConfig())
			g.Rebuild(layers, nil)
			rec := syn.Next()
			g.ApplyEpoch(&rec)

			for _, n := range g.Nodes() {
				tel := n.Telemetry
				for _, v := range []telemetry.Value{tel.InputValue, tel.Weight, tel.Bias, tel.PreActivation, tel.Activation, tel.Gradient} {
					if !finiteOrUnavailable(v) {
						return false
					}
				}
			}
			for _, l := range g.Links() {
				if !finiteOrUnavailable(l.Weight) {
					return false
				}
			}
			return true
		},
		sizesGen, depthGen, sizesGen, gen.Int64(),
	))

	properties.Property("move node touches exactly the incident links", prop.ForAll(
		func(sizes []int, depth int, pick int, x, y float64) bool {
			layers := sizes[:depth]
			g := NewGraph(DefaultConfig())
			g.Rebuild(layers, nil)
			nodes := g.Nodes()
			id := nodes[pick%len(nodes)].ID

			before := g.Snapshot()
			if err := g.MoveNode(id, x, y); err != nil {
				return false
			}
			after := g.Snapshot()
			for i, l := range after.Links {
				old := before.Links[i]
				incident := l.Source == id || l.Target == id
				changed := l.X1 != old.X1 || l.Y1 != old.Y1 || l.X2 != old.X2 || l.Y2 != old.Y2
				if !incident && changed {
					return false
				}
				if l.Source == id && (l.X1 != x || l.Y1 != y) {
					return false
				}
				if l.Target == id && (l.X2 != x || l.Y2 != y) {
					return false
				}
			}
			return true
		},
		sizesGen, depthGen, gen.IntRange(0, 1000), gen.Float64Range(-50, 1000), gen.Float64Range(-50, 1000),
	))

	properties.TestingRun(t)
}
