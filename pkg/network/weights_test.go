package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// spyLookup records which tensor each lookup read.
type spyLookup struct {
	input, hidden, output int
	hiddenLayers          []int
}

func (s *spyLookup) InputWeight(target, source int) telemetry.Value {
	s.input++
	return telemetry.ScalarValue(1)
}

func (s *spyLookup) HiddenWeight(layer, target, source int) telemetry.Value {
	s.hidden++
	s.hiddenLayers = append(s.hiddenLayers, layer)
	return telemetry.ScalarValue(2)
}

func (s *spyLookup) OutputWeight(target, source int) telemetry.Value {
	s.output++
	return telemetry.ScalarValue(3)
}

func TestResolveWeightInputTensor(t *testing.T) {
	wb := &telemetry.WeightsAndBiases{
		InputWeights: telemetry.NewTensor([][]float64{{0.1, 0.2}, {0.3, 0.4}}),
	}
	v := ResolveWeight(NodeID{Layer: 0, Index: 1}, 0, wb, []int{2, 2, 1})
	f, ok := v.Scalar()
	require.True(t, ok)
	assert.Equal(t, 0.2, f)
}

func TestResolveWeightTensorIsolation(t *testing.T) {
	layers := []int{3, 4, 2, 1}

	spy := &spyLookup{}
	ResolveWeight(NodeID{Layer: 0, Index: 2}, 3, spy, layers)
	assert.Equal(t, 1, spy.input)
	assert.Zero(t, spy.hidden, "input layer must not read hidden weights")
	assert.Zero(t, spy.output)

	spy = &spyLookup{}
	ResolveWeight(NodeID{Layer: 2, Index: 1}, 0, spy, layers)
	assert.Equal(t, 1, spy.output)
	assert.Zero(t, spy.input, "last hidden layer must not read input weights")
	assert.Zero(t, spy.hidden)

	spy = &spyLookup{}
	ResolveWeight(NodeID{Layer: 1, Index: 0}, 1, spy, layers)
	assert.Equal(t, 1, spy.hidden)
	assert.Equal(t, []int{1}, spy.hiddenLayers)
}

func TestResolveWeightTwoLayerNetwork(t *testing.T) {
	spy := &spyLookup{}
	ResolveWeight(NodeID{Layer: 0, Index: 0}, 0, spy, []int{2, 1})
	assert.Equal(t, 1, spy.input)
	assert.Zero(t, spy.output)
}

func TestResolveWeightMissingData(t *testing.T) {
	layers := []int{2, 3, 1}
	assert.False(t, ResolveWeight(NodeID{Layer: 0, Index: 0}, 0, nil, layers).IsAvailable())

	var nilWB *telemetry.WeightsAndBiases
	assert.False(t, ResolveWeight(NodeID{Layer: 1, Index: 0}, 0, nilWB, layers).IsAvailable())

	wb := &telemetry.WeightsAndBiases{InputWeights: telemetry.NewTensor([][]float64{{0.5}})}
	assert.False(t, ResolveWeight(NodeID{Layer: 0, Index: 1}, 0, wb, layers).IsAvailable(), "short row")
	assert.False(t, ResolveWeight(NodeID{Layer: 0, Index: 0}, 2, wb, layers).IsAvailable(), "missing target")
	assert.False(t, ResolveWeight(NodeID{Layer: 2, Index: 0}, 0, wb, layers).IsAvailable(), "output layer has no outgoing links")
	assert.Equal(t, telemetry.Unavailable, ResolveWeight(NodeID{Layer: 1, Index: 0}, 0, wb, layers).String())
}
