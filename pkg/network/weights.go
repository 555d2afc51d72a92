package network

import "github.com/dd0wney/cluso-netviz/pkg/telemetry"

// WeightLookup reads the three weight tensors of an epoch record. Every
// method returns an unavailable value when the requested cell is missing.
// *telemetry.WeightsAndBiases implements it.
type WeightLookup interface {
	// InputWeight reads input_weights[target][source].
	InputWeight(target, source int) telemetry.Value
	// HiddenWeight reads hidden_weights[layer][target][source].
	HiddenWeight(layer, target, source int) telemetry.Value
	// OutputWeight reads output_weights[target][source].
	OutputWeight(target, source int) telemetry.Value
}

// ResolveWeight returns the weight of the link from source to node
// targetIndex of the next layer. Links out of the input layer read the input
// tensor, links into the output layer read the output tensor and everything
// in between reads hidden[source.Layer]. A two-layer network reads the input
// tensor.
func ResolveWeight(source NodeID, targetIndex int, w WeightLookup, layers []int) telemetry.Value {
	if w == nil || source.Layer < 0 || source.Layer >= len(layers)-1 {
		return telemetry.UnavailableValue()
	}
	switch {
	case source.Layer == 0:
		return w.InputWeight(targetIndex, source.Index)
	case source.Layer == len(layers)-2:
		return w.OutputWeight(targetIndex, source.Index)
	default:
		return w.HiddenWeight(source.Layer, targetIndex, source.Index)
	}
}
