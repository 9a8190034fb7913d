package network

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidConfig is returned by Train for unusable hyperparameters.
var ErrInvalidConfig = errors.New("invalid training config")

// TrainConfig holds the hyperparameters of a Train call.
type TrainConfig struct {
	LearningRate float64      // Step size of every weight update
	TargetError  float64      // Stop once an epoch's summed squared error is <= this
	MaxEpochs    int          // Upper bound on epochs run
	Logger       *slog.Logger // Receives one record per epoch (default: slog.Default())
}

// TrainResult summarizes a Train call.
type TrainResult struct {
	Epochs    int       // Epochs actually run
	Error     float64   // Summed squared error of the last epoch run
	Converged bool      // Whether Error reached TargetError before MaxEpochs ran out
	History   []float64 // Summed squared error of every epoch, in order
}

// Train runs online gradient descent over the samples: for each epoch and
// each (inputs[i], expected[i]) pair in order it calls Forward, accumulates
// the squared difference between output and expectation, then Backward and
// UpdateWeights. After an epoch whose summed squared error is at or below
// cfg.TargetError training stops early; otherwise it stops after
// cfg.MaxEpochs epochs.
//
// Every sample is shape-checked before the first weight moves, so a
// returned error means the network is unchanged.
func (n *Network) Train(inputs, expected [][]float64, cfg TrainConfig) (TrainResult, error) {
	if err := n.validateSamples(inputs, expected); err != nil {
		return TrainResult{}, err
	}
	if cfg.MaxEpochs < 0 {
		return TrainResult{}, fmt.Errorf("%w: max epochs %d is negative", ErrInvalidConfig, cfg.MaxEpochs)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := TrainResult{History: make([]float64, 0, cfg.MaxEpochs)}
	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		sumError := n.trainEpoch(inputs, expected, cfg.LearningRate)

		result.Epochs = epoch + 1
		result.Error = sumError
		result.History = append(result.History, sumError)

		if sumError <= cfg.TargetError {
			result.Converged = true
			logger.Info("target error reached",
				"epoch", epoch,
				"learning_rate", cfg.LearningRate,
				"error", sumError)
			return result, nil
		}
		logger.Info("epoch",
			"epoch", epoch,
			"learning_rate", cfg.LearningRate,
			"error", sumError)
	}
	return result, nil
}

// trainEpoch runs one pass over the samples and returns the summed squared
// error. Shapes must already be validated.
func (n *Network) trainEpoch(inputs, expected [][]float64, learningRate float64) float64 {
	var sumError float64
	for i := range inputs {
		n.setInput(inputs[i])
		n.propagate(Sigmoid)

		out := n.layers[len(n.layers)-1]
		for j := range out {
			d := expected[i][j] - out[j].activation
			sumError += d * d
		}

		n.backward(expected[i])
		n.UpdateWeights(learningRate)
	}
	return sumError
}

func (n *Network) validateSamples(inputs, expected [][]float64) error {
	if len(inputs) != len(expected) {
		return &ShapeError{Op: "Train", Want: len(inputs), Got: len(expected)}
	}
	in, out := n.InputSize(), n.OutputSize()
	for i := range inputs {
		if len(inputs[i]) != in {
			return fmt.Errorf("sample %d input: %w", i, &ShapeError{Op: "Train", Want: in, Got: len(inputs[i])})
		}
		if len(expected[i]) != out {
			return fmt.Errorf("sample %d expected: %w", i, &ShapeError{Op: "Train", Want: out, Got: len(expected[i])})
		}
	}
	return nil
}
