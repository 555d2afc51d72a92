package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
  "event": "training_update",
  "data": {
    "input_size": 2,
    "epoch": 3,
    "loss": NaN,
    "forward_data": {
      "input": [[0.1, 0.2]],
      "hidden_activation": [
        {"pre_activation": [[0.5, -0.5, 1.0]], "post_activation": [[0.46, -0.46, Infinity]]}
      ],
      "output": [[0.9]],
      "forward_time": 0.02
    },
    "backward_data": {
      "hidden_grad": [[[0.01, 0.02, 0.03]]],
      "output_grad": [[-Infinity]],
      "backward_time": 0.03
    },
    "weights_biases_data": {
      "input_weights": [[1, 2], [3, 4], [5, 6]],
      "hidden_weights": [[[1, 2], [3, 4], [5, 6]]],
      "hidden_biases": [[0.1, 0.2, 0.3]],
      "output_weights": [[7, 8, 9]],
      "output_biases": [0.5]
    },
    "note": "NaN inside a string stays"
  }
}`

func TestDecodeFrameTrainingUpdate(t *testing.T) {
	msg, err := DecodeFrame([]byte(sampleRecord))
	require.NoError(t, err)
	require.Equal(t, MessageRecord, msg.Kind)
	rec := msg.Record
	require.NotNil(t, rec)

	assert.Equal(t, 3, rec.Epoch)
	assert.Equal(t, 2, rec.InputSize)
	assert.False(t, rec.Loss.IsAvailable(), "NaN loss")
	assert.InDelta(t, 0.02, rec.ForwardDurationSeconds(), 1e-9)
	assert.InDelta(t, 0.03, rec.BackwardDurationSeconds(), 1e-9)

	require.Len(t, rec.Forward.HiddenActivation, 1)
	assert.False(t, rec.Forward.HiddenActivation[0].PostActivation.At(0, 2).IsAvailable())
	assert.False(t, rec.Backward.OutputGrad.At(0, 0).IsAvailable())

	w, ok := rec.WeightsAndBiases.InputWeight(2, 1).Scalar()
	require.True(t, ok)
	assert.Equal(t, 6.0, w)
	w, ok = rec.WeightsAndBiases.OutputWeight(0, 2).Scalar()
	require.True(t, ok)
	assert.Equal(t, 9.0, w)
}

func TestDecodeFrameBareHiddenActivation(t *testing.T) {
	frame := `{"event":"training_update","data":{"epoch":1,"forward_data":{"hidden_activation":[[0.3,0.4]]}}}`
	msg, err := DecodeFrame([]byte(frame))
	require.NoError(t, err)
	hidden := msg.Record.Forward.HiddenActivation
	require.Len(t, hidden, 1)
	f, ok := hidden[0].PostActivation.At(0, 1).Scalar()
	require.True(t, ok)
	assert.Equal(t, 0.4, f)
	assert.True(t, hidden[0].PreActivation.IsZero())
}

func TestDecodeFrameControlEvents(t *testing.T) {
	tests := []struct {
		event Event
		want  Control
	}{
		{EventReset, ControlReset},
		{EventStopTraining, ControlStop},
		{EventTrainingStopped, ControlStop},
		{EventStartTraining, ControlStart},
		{EventTrainingStarted, ControlStart},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			frame, err := EncodeFrame(tt.event, nil, false)
			require.NoError(t, err)
			msg, err := DecodeFrame(frame)
			require.NoError(t, err)
			assert.Equal(t, MessageControl, msg.Kind)
			assert.Equal(t, tt.want, msg.Control)
		})
	}
}

func TestEncodeDecodeCompressed(t *testing.T) {
	topo := Topology{InputNodes: 3, HiddenLayerSizes: []int{4, 2}, OutputNodes: 1}
	frame, err := EncodeFrame(EventTopology, topo, true)
	require.NoError(t, err)
	assert.Equal(t, frameSnappy, frame[0])

	msg, err := DecodeFrame(frame)
	require.NoError(t, err)
	require.Equal(t, MessageTopology, msg.Kind)
	assert.Equal(t, []int{3, 4, 2, 1}, msg.Topology.Layers())
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame(nil)
	assert.True(t, errors.Is(err, ErrEmptyFrame))

	_, err = DecodeFrame([]byte(`{"event":"bogus"}`))
	assert.True(t, errors.Is(err, ErrUnknownEvent))

	_, err = DecodeFrame([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte{frameSnappy, 0xff, 0xff})
	assert.Error(t, err)
}

func TestSanitizeNonFinite(t *testing.T) {
	in := `{"a":NaN,"b":[Infinity,-Infinity,1],"s":"NaN \"Infinity\""}`
	want := `{"a":null,"b":[null,null,1],"s":"NaN \"Infinity\""}`
	assert.Equal(t, want, string(sanitizeNonFinite([]byte(in))))

	clean := []byte(`{"a":1}`)
	assert.Equal(t, clean, sanitizeNonFinite(clean))
}

func TestTopologyFromLayers(t *testing.T) {
	topo := TopologyFromLayers([]int{4, 4, 2, 1})
	assert.Equal(t, 4, topo.InputNodes)
	assert.Equal(t, []int{4, 2}, topo.HiddenLayerSizes)
	assert.Equal(t, 1, topo.OutputNodes)
	assert.Equal(t, []int{4, 4, 2, 1}, topo.Layers())

	flat := TopologyFromLayers([]int{2, 1})
	assert.Empty(t, flat.HiddenLayerSizes)
	assert.Equal(t, []int{2, 1}, flat.Layers())
}
