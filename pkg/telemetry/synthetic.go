package telemetry

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// Synthesizer trains a tiny tanh MLP with plain SGD on one random sample per
// epoch and reports each step as an EpochRecord in the trainer's wire shape.
// It drives `netviz sim` and the end-to-end tests.
type Synthesizer struct {
	layers []int
	rng    *rand.Rand
	lr     float64
	epoch  int

	// weights[j] feeds layer j+1 and is shaped [layers[j+1]][layers[j]].
	weights [][][]float64
	biases  [][]float64
}

// ErrBadTopology is returned for topologies the synthesizer cannot train.
var ErrBadTopology = errors.New("synthesizer needs at least two positive layers")

// NewSynthesizer initialises weights from seed.
func NewSynthesizer(topo Topology, seed int64) (*Synthesizer, error) {
	layers := topo.Layers()
	if len(layers) < 2 {
		return nil, ErrBadTopology
	}
	for _, n := range layers {
		if n <= 0 {
			return nil, ErrBadTopology
		}
	}
	s := &Synthesizer{
		layers: layers,
		rng:    rand.New(rand.NewSource(seed)),
		lr:     0.05,
	}
	for j := 0; j < len(layers)-1; j++ {
		in, out := layers[j], layers[j+1]
		scale := 1 / math.Sqrt(float64(in))
		w := make([][]float64, out)
		for t := range w {
			w[t] = make([]float64, in)
			for src := range w[t] {
				w[t][src] = (s.rng.Float64()*2 - 1) * scale
			}
		}
		s.weights = append(s.weights, w)
		s.biases = append(s.biases, make([]float64, out))
	}
	return s, nil
}

// Topology returns the trained network's shape.
func (s *Synthesizer) Topology() Topology {
	return TopologyFromLayers(s.layers)
}

// Epoch returns the number of records produced so far.
func (s *Synthesizer) Epoch() int { return s.epoch }

// Next runs one forward/backward/update step.
func (s *Synthesizer) Next() EpochRecord {
	L := len(s.layers)
	x := make([]float64, s.layers[0])
	target := 0.0
	for i := range x {
		x[i] = s.rng.Float64()*2 - 1
		target += math.Sin(x[i])
	}

	fwdStart := time.Now()
	pre := make([][]float64, L)
	act := make([][]float64, L)
	act[0] = x
	for j := 1; j < L; j++ {
		pre[j] = make([]float64, s.layers[j])
		act[j] = make([]float64, s.layers[j])
		for t := range pre[j] {
			sum := s.biases[j-1][t]
			for src, a := range act[j-1] {
				sum += s.weights[j-1][t][src] * a
			}
			pre[j][t] = sum
			if j == L-1 {
				act[j][t] = sum
			} else {
				act[j][t] = math.Tanh(sum)
			}
		}
	}
	forwardTime := time.Since(fwdStart).Seconds() + 0.01 + s.rng.Float64()*0.02

	bwdStart := time.Now()
	out := act[L-1]
	loss := 0.0
	grad := make([][]float64, L)
	grad[L-1] = make([]float64, len(out))
	for i, y := range out {
		d := y - target
		loss += d * d
		grad[L-1][i] = 2 * d / float64(len(out))
	}
	loss /= float64(len(out))
	for j := L - 2; j >= 1; j-- {
		grad[j] = make([]float64, s.layers[j])
		for src := range grad[j] {
			sum := 0.0
			for t, g := range grad[j+1] {
				sum += s.weights[j][t][src] * g
			}
			a := act[j][src]
			grad[j][src] = sum * (1 - a*a)
		}
	}
	for j := 1; j < L; j++ {
		for t, g := range grad[j] {
			for src, a := range act[j-1] {
				s.weights[j-1][t][src] -= s.lr * g * a
			}
			s.biases[j-1][t] -= s.lr * g
		}
	}
	backwardTime := time.Since(bwdStart).Seconds() + 0.01 + s.rng.Float64()*0.02

	s.epoch++
	return s.record(loss, pre, act, grad, forwardTime, backwardTime)
}

func (s *Synthesizer) record(loss float64, pre, act, grad [][]float64, fwd, bwd float64) EpochRecord {
	L := len(s.layers)
	batch := func(v []float64) Tensor { return NewTensor([][]float64{v}) }

	hidden := make(HiddenActivations, 0, L-2)
	hiddenGrad := make([][][]float64, 0, L-2)
	for j := 1; j < L-1; j++ {
		hidden = append(hidden, HiddenLayerActivation{
			PreActivation:  batch(pre[j]),
			PostActivation: batch(act[j]),
		})
		hiddenGrad = append(hiddenGrad, [][]float64{grad[j]})
	}

	// hidden_weights[j] is the matrix feeding layer j+1 for every hidden layer
	// j+1, so link lookups for hidden sources and node rows line up.
	hiddenWeights := make([][][]float64, 0, L-2)
	hiddenBiases := make([][]float64, 0, L-2)
	for j := 0; j < L-2; j++ {
		hiddenWeights = append(hiddenWeights, s.weights[j])
		hiddenBiases = append(hiddenBiases, s.biases[j])
	}

	return EpochRecord{
		InputSize: s.layers[0],
		Epoch:     s.epoch,
		Loss:      ScalarValue(loss),
		Forward: ForwardData{
			Input:            batch(act[0]),
			HiddenActivation: hidden,
			Output:           batch(act[L-1]),
			ForwardTime:      ScalarValue(fwd),
		},
		Backward: BackwardData{
			HiddenGrad:   NewTensor(hiddenGrad),
			OutputGrad:   batch(grad[L-1]),
			BackwardTime: ScalarValue(bwd),
		},
		WeightsAndBiases: &WeightsAndBiases{
			InputWeights:  NewTensor(s.weights[0]),
			HiddenWeights: NewTensor(hiddenWeights),
			HiddenBiases:  NewTensor(hiddenBiases),
			OutputWeights: NewTensor(s.weights[L-2]),
			OutputBiases:  NewTensor(s.biases[L-2]),
		},
	}
}
