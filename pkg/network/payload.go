package network

import (
	"fmt"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// PayloadField is one formatted popup row.
type PayloadField struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	// Detail carries "Min: a, Max: b" for multi-element series.
	Detail string `json:"detail,omitempty"`
}

// Payload is the presentation form of a node's latest telemetry.
type Payload struct {
	Title  string         `json:"title"`
	Layer  int            `json:"layer"`
	Index  int            `json:"index"`
	Kind   string         `json:"kind"`
	Epoch  int            `json:"epoch"`
	Firing bool           `json:"firing"`
	Fields []PayloadField `json:"fields"`
}

// Field returns the row labelled label.
func (p Payload) Field(label string) (PayloadField, bool) {
	for _, f := range p.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return PayloadField{}, false
}

// Popup row labels.
const (
	LabelInputValue  = "Input Value"
	LabelWeight      = "Weight"
	LabelBias        = "Bias"
	LabelWeightedSum = "Weighted Sum"
	LabelActivation  = "Activation"
	LabelGradient    = "Gradient"
)

func formatField(label string, v telemetry.Value) PayloadField {
	f := PayloadField{Label: label, Text: v.String()}
	if s, ok := v.Summary(); ok && v.IsSeries() && s.HasMinMax {
		f.Detail = fmt.Sprintf("Min: %.4f, Max: %.4f", s.Min, s.Max)
	}
	return f
}
