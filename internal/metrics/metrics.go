// Package metrics scores a network against labelled samples without
// training it.
package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/backprop/internal/network"
)

// ErrNoSamples is returned when there is nothing to evaluate.
var ErrNoSamples = errors.New("no samples")

// Report summarizes an evaluation run.
type Report struct {
	Samples         int       // Number of samples evaluated
	SumSquaredError float64   // Squared error summed over every output of every sample
	MeanSquaredErr  float64   // Mean of the per-sample squared errors
	StdDevError     float64   // Sample standard deviation of the per-sample squared errors (0 for one sample)
	Accuracy        float64   // Fraction of samples classified correctly
	PerSample       []float64 // Squared error of each sample
}

// SumSquaredError returns sum((want[i] - got[i])^2).
func SumSquaredError(got, want []float64) (float64, error) {
	if len(got) != len(want) {
		return 0, fmt.Errorf("%w: %d outputs, %d targets", network.ErrShapeMismatch, len(got), len(want))
	}
	diff := make([]float64, len(got))
	floats.SubTo(diff, want, got)
	return floats.Dot(diff, diff), nil
}

// Correct reports whether an output classifies like its target. Single
// output networks are thresholded at threshold; wider outputs compare the
// index of the largest value.
func Correct(got, want []float64, threshold float64) bool {
	if len(got) == 0 || len(got) != len(want) {
		return false
	}
	if len(got) == 1 {
		return (got[0] >= threshold) == (want[0] >= threshold)
	}
	return floats.MaxIdx(got) == floats.MaxIdx(want)
}

// Evaluate runs Forward for every sample and scores the outputs. Only
// activations of net change.
func Evaluate(net *network.Network, inputs, expected [][]float64, threshold float64) (Report, error) {
	if len(inputs) != len(expected) {
		return Report{}, &network.ShapeError{Op: "Evaluate", Want: len(inputs), Got: len(expected)}
	}
	if len(inputs) == 0 {
		return Report{}, ErrNoSamples
	}

	report := Report{
		Samples:   len(inputs),
		PerSample: make([]float64, len(inputs)),
	}
	var correct int
	for i := range inputs {
		out, err := net.Forward(inputs[i])
		if err != nil {
			return Report{}, fmt.Errorf("sample %d: %w", i, err)
		}
		sse, err := SumSquaredError(out, expected[i])
		if err != nil {
			return Report{}, fmt.Errorf("sample %d: %w", i, err)
		}
		report.PerSample[i] = sse
		if Correct(out, expected[i], threshold) {
			correct++
		}
	}

	report.SumSquaredError = floats.Sum(report.PerSample)
	report.MeanSquaredErr, report.StdDevError = stat.MeanStdDev(report.PerSample, nil)
	if len(inputs) == 1 {
		// The sample standard deviation of one value is undefined (NaN).
		report.StdDevError = 0
	}
	report.Accuracy = float64(correct) / float64(len(inputs))
	return report, nil
}
