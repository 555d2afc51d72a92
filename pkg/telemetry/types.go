package telemetry

import (
	"bytes"
	"encoding/json"
	"time"
)

// Topology is the one-off message describing the network shape.
type Topology struct {
	InputNodes       int   `json:"inputNodes" validate:"min=1"`
	HiddenLayerSizes []int `json:"hiddenLayerSizes" validate:"dive,min=1"`
	OutputNodes      int   `json:"outputNodes" validate:"min=1"`
}

// TopologyFromLayers splits a layer-size list into a Topology. The list must
// have at least two entries.
func TopologyFromLayers(layers []int) Topology {
	t := Topology{}
	if len(layers) == 0 {
		return t
	}
	t.InputNodes = layers[0]
	if len(layers) > 1 {
		t.OutputNodes = layers[len(layers)-1]
		t.HiddenLayerSizes = append([]int(nil), layers[1:len(layers)-1]...)
	}
	return t
}

// Layers returns [input, hidden..., output].
func (t Topology) Layers() []int {
	layers := make([]int, 0, len(t.HiddenLayerSizes)+2)
	layers = append(layers, t.InputNodes)
	layers = append(layers, t.HiddenLayerSizes...)
	return append(layers, t.OutputNodes)
}

// HiddenLayerActivation holds one hidden layer's pre/post activation tensors,
// each indexed [sample][node].
type HiddenLayerActivation struct {
	PreActivation  Tensor `json:"pre_activation"`
	PostActivation Tensor `json:"post_activation"`
}

// HiddenActivations accepts both the per-layer object form and the bare
// [sample][node] tensor some trainers emit for a single hidden layer.
type HiddenActivations []HiddenLayerActivation

func (h *HiddenActivations) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// Not an array: leave empty, fields fall back to unavailable.
		*h = nil
		return nil
	}
	if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("[")) {
		var post Tensor
		if err := post.UnmarshalJSON(data); err != nil {
			return err
		}
		*h = HiddenActivations{{PostActivation: post}}
		return nil
	}
	out := make(HiddenActivations, 0, len(items))
	for _, item := range items {
		var layer HiddenLayerActivation
		if err := json.Unmarshal(item, &layer); err != nil {
			layer = HiddenLayerActivation{}
		}
		out = append(out, layer)
	}
	*h = out
	return nil
}

// ForwardData is the forward half of an epoch record.
type ForwardData struct {
	Input            Tensor            `json:"input"`
	HiddenActivation HiddenActivations `json:"hidden_activation"`
	Output           Tensor            `json:"output"`
	ForwardTime      Value             `json:"forward_time"`
}

// BackwardData is the backward half of an epoch record.
type BackwardData struct {
	HiddenGrad   Tensor `json:"hidden_grad"`
	OutputGrad   Tensor `json:"output_grad"`
	BackwardTime Value  `json:"backward_time"`
}

// WeightsAndBiases carries the parameter tensors after the epoch.
type WeightsAndBiases struct {
	InputWeights  Tensor `json:"input_weights"`
	HiddenWeights Tensor `json:"hidden_weights"`
	HiddenBiases  Tensor `json:"hidden_biases"`
	OutputWeights Tensor `json:"output_weights"`
	OutputBiases  Tensor `json:"output_biases"`
}

// InputWeight returns input_weights[target][source].
func (w *WeightsAndBiases) InputWeight(target, source int) Value {
	if w == nil {
		return Value{}
	}
	return w.InputWeights.At(target, source)
}

// HiddenWeight returns hidden_weights[layer][target][source].
func (w *WeightsAndBiases) HiddenWeight(layer, target, source int) Value {
	if w == nil {
		return Value{}
	}
	return w.HiddenWeights.At(layer, target, source)
}

// OutputWeight returns output_weights[target][source].
func (w *WeightsAndBiases) OutputWeight(target, source int) Value {
	if w == nil {
		return Value{}
	}
	return w.OutputWeights.At(target, source)
}

// EpochRecord is one unit of training telemetry.
type EpochRecord struct {
	InputSize        int               `json:"input_size,omitempty"`
	Epoch            int               `json:"epoch"`
	Loss             Value             `json:"loss"`
	Forward          ForwardData       `json:"forward_data"`
	Backward         BackwardData      `json:"backward_data"`
	WeightsAndBiases *WeightsAndBiases `json:"weights_biases_data,omitempty"`
}

// ForwardDurationSeconds returns the measured forward time, or 0.
func (r *EpochRecord) ForwardDurationSeconds() float64 {
	f, _ := r.Forward.ForwardTime.Scalar()
	return f
}

// BackwardDurationSeconds returns the measured backward time, or 0.
func (r *EpochRecord) BackwardDurationSeconds() float64 {
	f, _ := r.Backward.BackwardTime.Scalar()
	return f
}

// Event names used on the wire.
type Event string

const (
	EventTopology        Event = "topology"
	EventTrainingUpdate  Event = "training_update"
	EventReset           Event = "reset"
	EventStopTraining    Event = "stop_training"
	EventTrainingStopped Event = "training_stopped"
	EventStartTraining   Event = "start_training"
	EventTrainingStarted Event = "training_started"
)

// Envelope is the framing shared by every transport.
type Envelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MessageKind classifies decoded messages.
type MessageKind int

const (
	MessageTopology MessageKind = iota
	MessageRecord
	MessageControl
)

func (k MessageKind) String() string {
	switch k {
	case MessageTopology:
		return "topology"
	case MessageRecord:
		return "record"
	case MessageControl:
		return "control"
	default:
		return "unknown"
	}
}

// Control is an out-of-band signal for the engine.
type Control int

const (
	ControlReset Control = iota
	ControlStop
	ControlStart
)

func (c Control) String() string {
	switch c {
	case ControlReset:
		return "reset"
	case ControlStop:
		return "stop"
	case ControlStart:
		return "start"
	default:
		return "unknown"
	}
}

// Message is one decoded telemetry unit handed to the engine loop.
type Message struct {
	Kind     MessageKind
	Topology *Topology
	Record   *EpochRecord
	Control  Control
	Received time.Time
}
