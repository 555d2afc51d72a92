package network

import (
	"fmt"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// NodeKind tags a node's role in the network.
type NodeKind int

const (
	KindInput NodeKind = iota
	KindHidden
	KindOutput
)

func (k NodeKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindHidden:
		return "hidden"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of a node in layer of an L-layer network.
func KindOf(layer, L int) NodeKind {
	switch layer {
	case 0:
		return KindInput
	case L - 1:
		return KindOutput
	default:
		return KindHidden
	}
}

// kindBehaviour is everything that differs between node kinds.
type kindBehaviour struct {
	label   func(layer int) string
	extract func(rec *telemetry.EpochRecord, id NodeID) NodeTelemetry
	fields  func(t NodeTelemetry) []PayloadField
	// primary is the value recorded in history and used for colouring.
	primary func(t NodeTelemetry) telemetry.Value
	fires   bool
}

var behaviours = [...]kindBehaviour{
	KindInput: {
		label:   func(int) string { return "Input" },
		extract: extractInput,
		fields: func(t NodeTelemetry) []PayloadField {
			return []PayloadField{formatField(LabelInputValue, t.InputValue)}
		},
		primary: func(t NodeTelemetry) telemetry.Value { return t.InputValue },
	},
	KindHidden: {
		label:   func(layer int) string { return fmt.Sprintf("Hidden Layer %d", layer) },
		extract: extractHidden,
		fields:  neuronFields,
		primary: func(t NodeTelemetry) telemetry.Value { return t.Activation },
		fires:   true,
	},
	KindOutput: {
		label:   func(int) string { return "Output" },
		extract: extractOutput,
		fields:  neuronFields,
		primary: func(t NodeTelemetry) telemetry.Value { return t.Activation },
		fires:   true,
	},
}

func behaviourOf(k NodeKind) kindBehaviour {
	if k < KindInput || k > KindOutput {
		return behaviours[KindHidden]
	}
	return behaviours[k]
}

func neuronFields(t NodeTelemetry) []PayloadField {
	return []PayloadField{
		formatField(LabelWeight, t.Weight),
		formatField(LabelBias, t.Bias),
		formatField(LabelWeightedSum, t.PreActivation),
		formatField(LabelActivation, t.Activation),
		formatField(LabelGradient, t.Gradient),
	}
}
