package visualization

import (
	"fmt"
	"math"
)

// LayeredLayout spreads layers evenly across the width and each layer's nodes
// evenly down the height.
type LayeredLayout struct {
	config LayoutConfig
}

// NewLayeredLayout creates a layered layout for the given viewport.
func NewLayeredLayout(config LayoutConfig) *LayeredLayout {
	return &LayeredLayout{config: config}
}

// Config returns the viewport the layout was built for.
func (ll *LayeredLayout) Config() LayoutConfig {
	return ll.config
}

// Compute positions layer k at x = W/(L+1) * (k+1) and node i of an n-node
// layer at y = H/(n+1) * (i+1).
func (ll *LayeredLayout) Compute(layerSizes []int) ([][]Position, error) {
	if err := ValidateLayers(layerSizes); err != nil {
		return nil, err
	}
	if err := ValidateViewport(ll.config.Width, ll.config.Height); err != nil {
		return nil, err
	}

	hSpacing := ll.config.Width / float64(len(layerSizes)+1)
	positions := make([][]Position, len(layerSizes))
	for k, n := range layerSizes {
		x := hSpacing * float64(k+1)
		vSpacing := ll.config.Height / float64(n+1)
		positions[k] = make([]Position, n)
		for i := range positions[k] {
			positions[k][i] = Position{X: x, Y: vSpacing * float64(i+1)}
		}
	}
	return positions, nil
}

// ValidateLayers checks that there are at least two layers and every layer
// has a positive size.
func ValidateLayers(layerSizes []int) error {
	if len(layerSizes) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidTopology, len(layerSizes))
	}
	for k, n := range layerSizes {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has size %d", ErrInvalidTopology, k, n)
		}
	}
	return nil
}

// ValidateViewport checks that both viewport dimensions are finite and
// positive.
func ValidateViewport(width, height float64) error {
	for _, d := range []float64{width, height} {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return fmt.Errorf("%w: viewport %gx%g must be finite and positive", ErrInvalidTopology, width, height)
		}
	}
	return nil
}
