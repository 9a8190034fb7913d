package network

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func weightsOf(t *testing.T, net *Network) [][]float64 {
	t.Helper()
	var all [][]float64
	for l := 0; l < net.NumLayers(); l++ {
		layer, err := net.Layer(l)
		require.NoError(t, err)
		for u := range layer {
			all = append(all, layer[u].Weights())
		}
	}
	return all
}

// TestTrain_SingleStepMatchesManual checks that one epoch over one sample is
// exactly Forward, Backward and UpdateWeights.
func TestTrain_SingleStepMatchesManual(t *testing.T) {
	net := newTestNetwork(t, 2, 3, 1)
	manual := net.Clone()

	input := []float64{0.2, 0.8}
	expected := []float64{0.3}

	res, err := net.Train([][]float64{input}, [][]float64{expected}, TrainConfig{
		LearningRate: 0.5,
		TargetError:  -1,
		MaxEpochs:    1,
		Logger:       quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Epochs)

	out, err := manual.Forward(input)
	require.NoError(t, err)
	require.NoError(t, manual.Backward(expected))
	manual.UpdateWeights(0.5)

	d := expected[0] - out[0]
	assert.Equal(t, d*d, res.Error)
	assert.Equal(t, weightsOf(t, manual), weightsOf(t, net))
}

// TestTrain_MultiSampleMatchesManual checks that an epoch over several
// samples leaves the same weights, activations and error terms as calling
// Forward, Backward and UpdateWeights per sample.
func TestTrain_MultiSampleMatchesManual(t *testing.T) {
	inputs := [][]float64{{0.1, 0.9}, {0.7, 0.3}, {0.5, 0.5}}
	expected := [][]float64{{0.2, 0.9}, {0.8, 0.1}, {0.5, 0.5}}

	net := newTestNetwork(t, 2, 4, 2)
	manual := net.Clone()

	res, err := net.Train(inputs, expected, TrainConfig{
		LearningRate: 0.25, TargetError: -1, MaxEpochs: 2, Logger: quietLogger(),
	})
	require.NoError(t, err)

	var last float64
	for epoch := 0; epoch < 2; epoch++ {
		last = 0
		for i := range inputs {
			out, err := manual.Forward(inputs[i])
			require.NoError(t, err)
			for j := range out {
				d := expected[i][j] - out[j]
				last += d * d
			}
			require.NoError(t, manual.Backward(expected[i]))
			manual.UpdateWeights(0.25)
		}
	}

	assert.Equal(t, last, res.Error)
	assert.Equal(t, weightsOf(t, manual), weightsOf(t, net))
	for l := 0; l < net.NumLayers(); l++ {
		assert.Equal(t, manual.LayerActivations(l), net.LayerActivations(l), "layer %d activations", l)
		assert.Equal(t, manual.LayerErrors(l), net.LayerErrors(l), "layer %d errors", l)
	}
}

func TestTrain_RunsMaxEpochsWhenUnreachable(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1)

	res, err := net.Train(
		[][]float64{{0, 1}, {1, 0}},
		[][]float64{{1}, {0}},
		TrainConfig{LearningRate: 0.1, TargetError: -1, MaxEpochs: 7, Logger: quietLogger()},
	)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Epochs)
	assert.False(t, res.Converged)
	assert.Len(t, res.History, 7)
	assert.Equal(t, res.History[6], res.Error)
}

func TestTrain_HighTargetStopsAfterFirstEpoch(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1)

	res, err := net.Train(
		[][]float64{{0, 1}},
		[][]float64{{1}},
		TrainConfig{LearningRate: 0.1, TargetError: 1e9, MaxEpochs: 50, Logger: quietLogger()},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Epochs)
	assert.True(t, res.Converged)
}

// TestTrain_TargetAtFirstEpochError checks that a target equal to the first
// epoch's summed error stops training right there.
func TestTrain_TargetAtFirstEpochError(t *testing.T) {
	inputs := [][]float64{{0.1, 0.9}, {0.7, 0.3}}
	expected := [][]float64{{0.2}, {0.8}}

	net := newTestNetwork(t, 2, 3, 1)
	firstRun := net.Clone()

	first, err := firstRun.Train(inputs, expected, TrainConfig{
		LearningRate: 0.3, TargetError: -1, MaxEpochs: 1, Logger: quietLogger(),
	})
	require.NoError(t, err)

	res, err := net.Train(inputs, expected, TrainConfig{
		LearningRate: 0.3, TargetError: first.Error, MaxEpochs: 100, Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Epochs)
	assert.True(t, res.Converged)
	assert.Equal(t, first.Error, res.Error)
}

func TestTrain_ReducesError(t *testing.T) {
	net := newTestNetwork(t, 2, 1)

	res, err := net.Train(
		[][]float64{{1, 0}},
		[][]float64{{0.2}},
		TrainConfig{LearningRate: 0.5, TargetError: -1, MaxEpochs: 200, Logger: quietLogger()},
	)
	require.NoError(t, err)
	require.Len(t, res.History, 200)
	assert.Less(t, res.History[199], res.History[0])
}

func TestTrain_ZeroEpochs(t *testing.T) {
	net := newTestNetwork(t, 2, 1)
	before := weightsOf(t, net)

	res, err := net.Train([][]float64{{1, 1}}, [][]float64{{1}}, TrainConfig{MaxEpochs: 0, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Zero(t, res.Epochs)
	assert.False(t, res.Converged)
	assert.Equal(t, before, weightsOf(t, net))
}

func TestTrain_RejectsBadShapesWithoutMutation(t *testing.T) {
	tests := []struct {
		name     string
		inputs   [][]float64
		expected [][]float64
	}{
		{"count mismatch", [][]float64{{1, 1}, {0, 0}}, [][]float64{{1}}},
		{"short input", [][]float64{{1, 1}, {0}}, [][]float64{{1}, {0}}},
		{"long expected", [][]float64{{1, 1}}, [][]float64{{1, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := newTestNetwork(t, 2, 2, 1)
			before := weightsOf(t, net)

			_, err := net.Train(tt.inputs, tt.expected, TrainConfig{
				LearningRate: 0.5, MaxEpochs: 10, Logger: quietLogger(),
			})
			require.ErrorIs(t, err, ErrShapeMismatch)
			assert.Equal(t, before, weightsOf(t, net))
			assert.Equal(t, []float64{0, 0}, net.LayerActivations(0))
		})
	}
}

func TestTrain_NegativeEpochs(t *testing.T) {
	net := newTestNetwork(t, 2, 1)
	_, err := net.Train(nil, nil, TrainConfig{MaxEpochs: -1, Logger: quietLogger()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestTrain_LogsEveryEpoch checks the per-epoch progress records.
func TestTrain_LogsEveryEpoch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	net := newTestNetwork(t, 2, 2, 1)
	res, err := net.Train(
		[][]float64{{0, 1}},
		[][]float64{{1}},
		TrainConfig{LearningRate: 0.1, TargetError: -1, MaxEpochs: 4, Logger: logger},
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	for i, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "epoch", rec["msg"])
		assert.EqualValues(t, i, rec["epoch"])
		assert.InDelta(t, res.History[i], rec["error"], 1e-12)
	}
}
