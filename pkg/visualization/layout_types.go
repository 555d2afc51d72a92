package visualization

import "errors"

// ErrInvalidTopology is returned for layer lists that cannot be laid out.
var ErrInvalidTopology = errors.New("invalid topology")

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 `json:"width" yaml:"width" toml:"width"`                   // Canvas width
	Height     float64 `json:"height" yaml:"height" toml:"height"`                // Canvas height
	NodeRadius float64 `json:"node_radius" yaml:"node_radius" toml:"node_radius"` // Drawn node radius
}

// DefaultLayoutConfig matches the original 960x540 canvas.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{Width: 960, Height: 540, NodeRadius: 20}
}

// Layout places every node of a layered network. The result is indexed
// [layer][index].
type Layout interface {
	Compute(layerSizes []int) ([][]Position, error)
}
