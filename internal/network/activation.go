package network

import "math"

// Sigmoid is the logistic transfer function applied to every non-input unit.
//
//	f(x) = 1 / (1 + e^-x)
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative returns the sigmoid slope expressed through an already
// computed activation a = Sigmoid(x):
//
//	f'(x) = a * (1 - a)
func SigmoidDerivative(a float64) float64 {
	return a * (1.0 - a)
}
