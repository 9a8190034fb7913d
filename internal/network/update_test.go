package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpdateWeights_Rule checks that every weight moves by exactly
// -learningRate * error[target] * activation[source].
func TestUpdateWeights_Rule(t *testing.T) {
	const lr = 0.65

	net := newTestNetwork(t, 3, 4, 2)
	_, err := net.Forward([]float64{0.1, 0.5, 0.9})
	require.NoError(t, err)
	require.NoError(t, net.Backward([]float64{0, 1}))

	before := net.Clone()
	net.UpdateWeights(lr)

	for l := 0; l < net.NumLayers()-1; l++ {
		acts := before.LayerActivations(l)
		nextErrs := before.LayerErrors(l + 1)
		for p := range acts {
			old, err := before.Unit(l, p)
			require.NoError(t, err)
			updated, err := net.Unit(l, p)
			require.NoError(t, err)

			oldW := old.Weights()
			newW := updated.Weights()
			for n := range oldW {
				want := oldW[n] - lr*nextErrs[n]*acts[p]
				assert.Equal(t, want, newW[n], "layer %d unit %d -> %d", l, p, n)
			}
		}
	}
}

func TestUpdateWeights_LeavesActivationsAndErrors(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1)
	_, err := net.Forward([]float64{0.3, 0.4})
	require.NoError(t, err)
	require.NoError(t, net.Backward([]float64{1}))

	before := net.Clone()
	net.UpdateWeights(0.5)

	for l := 0; l < net.NumLayers(); l++ {
		assert.Equal(t, before.LayerActivations(l), net.LayerActivations(l))
		assert.Equal(t, before.LayerErrors(l), net.LayerErrors(l))
	}
}

func TestUpdateWeights_ZeroRateIsNoop(t *testing.T) {
	net := newTestNetwork(t, 2, 3, 1)
	_, err := net.Forward([]float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, net.Backward([]float64{0}))

	before := net.Clone()
	net.UpdateWeights(0)

	for l := 0; l < net.NumLayers(); l++ {
		layer, _ := net.Layer(l)
		prev, _ := before.Layer(l)
		for u := range layer {
			assert.Equal(t, prev[u].Weights(), layer[u].Weights())
		}
	}
}
