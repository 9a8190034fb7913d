// Package config loads training runs described in YAML.
//
// Example file:
//
//	architecture: [2, 3, 1]   # or "2 3 1"
//	learning_rate: 0.5
//	target_error: 0.01
//	max_epochs: 5000
//	seed: 42
//	samples:
//	  - input: [0, 1]
//	    expected: [1]
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/backprop/internal/network"
)

// Defaults applied to zero-valued fields.
const (
	DefaultLearningRate = 0.5
	DefaultMaxEpochs    = 1000
	DefaultThreshold    = 0.5
)

// ErrInvalidConfig is returned for configurations that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid config")

// Architecture lists the unit count of every layer, input first.
type Architecture []int

// UnmarshalYAML accepts either a sequence of integers or a space separated
// string.
func (a *Architecture) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseArchitecture(value.Value)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	var sizes []int
	if err := value.Decode(&sizes); err != nil {
		return fmt.Errorf("architecture: %w", err)
	}
	*a = sizes
	return nil
}

// Sample is one training pair.
type Sample struct {
	Input    []float64 `yaml:"input"`
	Expected []float64 `yaml:"expected"`
}

// Config describes a training run.
type Config struct {
	Architecture Architecture `yaml:"architecture"`
	LearningRate float64      `yaml:"learning_rate"` // default: 0.5
	TargetError  float64      `yaml:"target_error"`
	MaxEpochs    int          `yaml:"max_epochs"` // default: 1000
	Seed         *uint64      `yaml:"seed"`       // nil: seeded from the clock
	Threshold    float64      `yaml:"threshold"`  // default: 0.5
	Samples      []Sample     `yaml:"samples"`
}

// ParseArchitecture parses a space or comma separated list of layer sizes.
func ParseArchitecture(s string) (Architecture, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	arch := make(Architecture, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %w", ErrInvalidConfig, i, err)
		}
		arch[i] = n
	}
	return arch, nil
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LearningRate == 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.MaxEpochs == 0 {
		c.MaxEpochs = DefaultMaxEpochs
	}
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
}

// Validate checks the topology, hyperparameters and sample shapes.
func (c *Config) Validate() error {
	if err := network.ValidateSizes(c.Architecture); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	}
	if c.MaxEpochs < 1 {
		return fmt.Errorf("%w: max epochs must be positive, got %d", ErrInvalidConfig, c.MaxEpochs)
	}

	in, out := c.Architecture[0], c.Architecture[len(c.Architecture)-1]
	for i, s := range c.Samples {
		if len(s.Input) != in {
			return fmt.Errorf("%w: sample %d: %w", ErrInvalidConfig, i,
				&network.ShapeError{Op: "input", Want: in, Got: len(s.Input)})
		}
		if len(s.Expected) != out {
			return fmt.Errorf("%w: sample %d: %w", ErrInvalidConfig, i,
				&network.ShapeError{Op: "expected", Want: out, Got: len(s.Expected)})
		}
	}
	return nil
}

// Inputs returns the input vector of every sample.
func (c *Config) Inputs() [][]float64 {
	out := make([][]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Input
	}
	return out
}

// Expected returns the target vector of every sample.
func (c *Config) Expected() [][]float64 {
	out := make([][]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Expected
	}
	return out
}

// Source returns the random source for weight initialization.
func (c *Config) Source() rand.Source {
	if c.Seed != nil {
		return rand.NewPCG(*c.Seed, *c.Seed)
	}
	//nolint:gosec // G115: wraparound is harmless for a seed
	return rand.NewPCG(uint64(time.Now().UnixNano()), 0)
}

// TrainConfig converts the run settings for network.Train.
func (c *Config) TrainConfig(logger *slog.Logger) network.TrainConfig {
	return network.TrainConfig{
		LearningRate: c.LearningRate,
		TargetError:  c.TargetError,
		MaxEpochs:    c.MaxEpochs,
		Logger:       logger,
	}
}

// NewNetwork builds the network described by the architecture.
func (c *Config) NewNetwork() (*network.Network, error) {
	return network.New(c.Architecture, c.Source())
}
