package telemetry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizerRecordShape(t *testing.T) {
	topo := Topology{InputNodes: 4, HiddenLayerSizes: []int{4, 2}, OutputNodes: 1}
	syn, err := NewSynthesizer(topo, 42)
	require.NoError(t, err)

	rec := syn.Next()
	assert.Equal(t, 1, rec.Epoch)
	assert.True(t, rec.Loss.IsAvailable())
	assert.Greater(t, rec.ForwardDurationSeconds(), 0.0)

	assert.Equal(t, 4, rec.Forward.Input.Len(0))
	require.Len(t, rec.Forward.HiddenActivation, 2)
	assert.Equal(t, 2, rec.Forward.HiddenActivation[1].PreActivation.Len(0))
	assert.Equal(t, 1, rec.Forward.Output.Len(0))
	assert.Equal(t, 2, rec.Backward.HiddenGrad.Len())
	assert.Equal(t, 4, rec.Backward.HiddenGrad.Len(0, 0))

	wb := rec.WeightsAndBiases
	require.NotNil(t, wb)
	// Input weights are [hidden1][input]; hidden_weights[1] feeds the second hidden layer.
	assert.True(t, wb.InputWeight(3, 3).IsAvailable())
	assert.True(t, wb.HiddenWeight(1, 1, 3).IsAvailable())
	assert.False(t, wb.HiddenWeight(1, 2, 0).IsAvailable())
	assert.True(t, wb.OutputWeight(0, 1).IsAvailable())
	assert.True(t, wb.HiddenBiases.At(1).IsSeries())
}

func TestSynthesizerSurvivesWireRoundTrip(t *testing.T) {
	syn, err := NewSynthesizer(Topology{InputNodes: 2, HiddenLayerSizes: []int{3}, OutputNodes: 2}, 7)
	require.NoError(t, err)
	frame, err := EncodeFrame(EventTrainingUpdate, syn.Next(), false)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, EventTrainingUpdate, env.Event)

	msg, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.True(t, msg.Record.Forward.HiddenActivation[0].PostActivation.At(0, 2).IsAvailable())
}

func TestSynthesizerLossDecreases(t *testing.T) {
	syn, err := NewSynthesizer(Topology{InputNodes: 2, HiddenLayerSizes: []int{8}, OutputNodes: 1}, 3)
	require.NoError(t, err)

	avg := func(n int) float64 {
		sum := 0.0
		for i := 0; i < n; i++ {
			rec := syn.Next()
			f, _ := rec.Loss.Scalar()
			sum += f
		}
		return sum / float64(n)
	}
	early := avg(50)
	for i := 0; i < 2000; i++ {
		syn.Next()
	}
	late := avg(200)
	assert.Less(t, late, early)
	assert.Equal(t, 2250, syn.Epoch())
}

func TestSynthesizerRejectsBadTopology(t *testing.T) {
	_, err := NewSynthesizer(Topology{InputNodes: 0, OutputNodes: 1}, 1)
	assert.True(t, errors.Is(err, ErrBadTopology))
}
