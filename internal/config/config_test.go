package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/network"
)

const xorYAML = `
architecture: [2, 3, 1]
learning_rate: 0.65
target_error: 0.05
max_epochs: 500
seed: 7
samples:
  - input: [0, 0]
    expected: [0]
  - input: [0, 1]
    expected: [1]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(xorYAML))
	require.NoError(t, err)

	assert.Equal(t, Architecture{2, 3, 1}, cfg.Architecture)
	assert.Equal(t, 0.65, cfg.LearningRate)
	assert.Equal(t, 0.05, cfg.TargetError)
	assert.Equal(t, 500, cfg.MaxEpochs)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)

	assert.Equal(t, [][]float64{{0, 0}, {0, 1}}, cfg.Inputs())
	assert.Equal(t, [][]float64{{0}, {1}}, cfg.Expected())

	tc := cfg.TrainConfig(nil)
	assert.Equal(t, 0.65, tc.LearningRate)
	assert.Equal(t, 500, tc.MaxEpochs)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`architecture: "4 2 1"`))
	require.NoError(t, err)

	assert.Equal(t, Architecture{4, 2, 1}, cfg.Architecture)
	assert.Equal(t, DefaultLearningRate, cfg.LearningRate)
	assert.Equal(t, DefaultMaxEpochs, cfg.MaxEpochs)
	assert.Nil(t, cfg.Seed)
	assert.Empty(t, cfg.Samples)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"one layer", `architecture: [3]`},
		{"empty layer", `architecture: [3, 0, 1]`},
		{"bad size string", `architecture: "3 x 1"`},
		{"negative rate", "architecture: [2, 1]\nlearning_rate: -1"},
		{"negative epochs", "architecture: [2, 1]\nmax_epochs: -3"},
		{"short input", "architecture: [2, 1]\nsamples:\n  - input: [1]\n    expected: [1]"},
		{"long expected", "architecture: [2, 1]\nsamples:\n  - input: [1, 0]\n    expected: [1, 0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Parse([]byte("architecture: [2, 1"))
	assert.Error(t, err)
}

func TestParse_ShapeErrorsWrapNetworkSentinels(t *testing.T) {
	_, err := Parse([]byte("architecture: [2, 1]\nsamples:\n  - input: [1]\n    expected: [1]"))
	assert.ErrorIs(t, err, network.ErrShapeMismatch)

	_, err = Parse([]byte(`architecture: [3]`))
	assert.ErrorIs(t, err, network.ErrConstruction)
}

func TestParseArchitecture(t *testing.T) {
	arch, err := ParseArchitecture("784, 128 10")
	require.NoError(t, err)
	assert.Equal(t, Architecture{784, 128, 10}, arch)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(xorYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Samples, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeededNetworkIsReproducible(t *testing.T) {
	cfg, err := Parse([]byte(xorYAML))
	require.NoError(t, err)

	a, err := cfg.NewNetwork()
	require.NoError(t, err)
	b, err := cfg.NewNetwork()
	require.NoError(t, err)

	ua, _ := a.Unit(0, 1)
	ub, _ := b.Unit(0, 1)
	assert.Equal(t, ua.Weights(), ub.Weights())
}
