package network

import "github.com/dd0wney/cluso-netviz/pkg/telemetry"

// NodeTelemetry is the latest per-node telemetry. Input nodes only use
// InputValue; every other field is for hidden and output nodes.
type NodeTelemetry struct {
	InputValue    telemetry.Value `json:"input_value"`
	Weight        telemetry.Value `json:"weight"`
	Bias          telemetry.Value `json:"bias"`
	PreActivation telemetry.Value `json:"pre_activation"`
	Activation    telemetry.Value `json:"activation"`
	Gradient      telemetry.Value `json:"gradient"`
}

// sample is the batch row visualised; later rows are ignored.
const sample = 0

func extractInput(rec *telemetry.EpochRecord, id NodeID) NodeTelemetry {
	return NodeTelemetry{InputValue: rec.Forward.Input.At(sample, id.Index)}
}

func extractHidden(rec *telemetry.EpochRecord, id NodeID) NodeTelemetry {
	h := id.Layer - 1
	t := NodeTelemetry{Gradient: rec.Backward.HiddenGrad.At(h, sample, id.Index)}
	if h < len(rec.Forward.HiddenActivation) {
		act := rec.Forward.HiddenActivation[h]
		t.PreActivation = act.PreActivation.At(sample, id.Index)
		t.Activation = act.PostActivation.At(sample, id.Index)
	}
	if wb := rec.WeightsAndBiases; wb != nil {
		t.Weight = wb.HiddenWeights.At(h, id.Index)
		t.Bias = wb.HiddenBiases.At(h, id.Index)
	}
	return t
}

// extractOutput treats the output layer as linear, so the weighted sum and
// the activation are the same number.
func extractOutput(rec *telemetry.EpochRecord, id NodeID) NodeTelemetry {
	out := rec.Forward.Output.At(sample, id.Index)
	t := NodeTelemetry{
		PreActivation: out,
		Activation:    out,
		Gradient:      rec.Backward.OutputGrad.At(sample, id.Index),
	}
	if wb := rec.WeightsAndBiases; wb != nil {
		t.Weight = wb.OutputWeights.At(id.Index)
		t.Bias = wb.OutputBiases.At(id.Index)
	}
	return t
}

// Mismatch records a record dimension that disagrees with the drawn topology.
// Layer is the node layer for activation and bias tensors and the source
// layer of the link pair for weight tensors.
type Mismatch struct {
	Field string `json:"field"`
	Layer int    `json:"layer"`
	Drawn int    `json:"drawn"`
	Got   int    `json:"got"`
	Links bool   `json:"links,omitempty"`
}

// shape is the outcome of comparing a record against the drawn layers.
// Withheld nodes, links and weight or bias fields get unavailable telemetry
// instead of cells from a different topology.
type shape struct {
	mismatches []Mismatch
	nodes      map[int]bool // whole layer
	links      map[int]bool // links out of a source layer
	weights    map[int]bool // Weight field of a node layer
	biases     map[int]bool // Bias field of a node layer
}

func (s *shape) node(field string, layer, drawn, got int) {
	s.mismatches = append(s.mismatches, Mismatch{Field: field, Layer: layer, Drawn: drawn, Got: got})
	s.nodes[layer] = true
}

// withhold applies s to one node's extracted telemetry.
func (s *shape) withhold(layer int, t NodeTelemetry) NodeTelemetry {
	if s.nodes[layer] {
		return NodeTelemetry{}
	}
	if s.weights[layer] {
		t.Weight = telemetry.UnavailableValue()
	}
	if s.biases[layer] {
		t.Bias = telemetry.UnavailableValue()
	}
	return t
}

// checkShape compares the record's tensors against layers. Absent tensors
// are not mismatches; they simply leave fields unavailable.
func checkShape(rec *telemetry.EpochRecord, layers []int) shape {
	s := shape{
		nodes:   make(map[int]bool),
		links:   make(map[int]bool),
		weights: make(map[int]bool),
		biases:  make(map[int]bool),
	}
	L := len(layers)
	nodeDim := func(field string, layer, got int) {
		if got != 0 && got != layers[layer] {
			s.node(field, layer, layers[layer], got)
		}
	}

	if rec.InputSize != 0 && rec.InputSize != layers[0] {
		s.node("input_size", 0, layers[0], rec.InputSize)
	}
	nodeDim("forward_data.input", 0, rec.Forward.Input.Len(sample))

	hidden := rec.Forward.HiddenActivation
	if n := len(hidden); n != 0 && n != L-2 {
		for k := 1; k < L-1; k++ {
			s.node("forward_data.hidden_activation", k, L-2, n)
		}
	} else {
		for h, act := range hidden {
			nodeDim("forward_data.hidden_activation.pre_activation", h+1, act.PreActivation.Len(sample))
			nodeDim("forward_data.hidden_activation.post_activation", h+1, act.PostActivation.Len(sample))
		}
	}
	for k := 1; k < L-1; k++ {
		nodeDim("backward_data.hidden_grad", k, rec.Backward.HiddenGrad.Len(k-1, sample))
	}
	nodeDim("forward_data.output", L-1, rec.Forward.Output.Len(sample))
	nodeDim("backward_data.output_grad", L-1, rec.Backward.OutputGrad.Len(sample))

	wb := rec.WeightsAndBiases
	if wb == nil {
		return s
	}
	// Weight tensors are [target][source] for the pair src -> src+1. The
	// tensor feeding a node layer also supplies that layer's Weight rows.
	pair := func(field string, src int, t telemetry.Tensor, idx ...int) bool {
		if rows := t.Len(idx...); rows != 0 && rows != layers[src+1] {
			s.mismatches = append(s.mismatches, Mismatch{Field: field, Layer: src, Drawn: layers[src+1], Got: rows, Links: true})
			return true
		}
		if cols := t.Len(append(idx, 0)...); cols != 0 && cols != layers[src] {
			s.mismatches = append(s.mismatches, Mismatch{Field: field, Layer: src, Drawn: layers[src], Got: cols, Links: true})
			return true
		}
		return false
	}
	bias := func(field string, layer, got int) {
		if got != 0 && got != layers[layer] {
			s.mismatches = append(s.mismatches, Mismatch{Field: field, Layer: layer, Drawn: layers[layer], Got: got})
			s.biases[layer] = true
		}
	}

	if pair("weights_biases_data.input_weights", 0, wb.InputWeights) {
		s.links[0] = true
	}
	for h := 0; h < L-2; h++ {
		if pair("weights_biases_data.hidden_weights", h, wb.HiddenWeights, h) {
			s.weights[h+1] = true
			if h > 0 {
				s.links[h] = true
			}
		}
		bias("weights_biases_data.hidden_biases", h+1, wb.HiddenBiases.Len(h))
	}
	if pair("weights_biases_data.output_weights", L-2, wb.OutputWeights) {
		s.weights[L-1] = true
		if L > 2 {
			s.links[L-2] = true
		}
	}
	bias("weights_biases_data.output_biases", L-1, wb.OutputBiases.Len())
	return s
}
