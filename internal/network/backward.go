package network

// Backward computes the error term of every unit for the sample last passed
// to Forward, walking from the output layer to the input layer.
//
// For output units the raw error is activation - expected. For any other
// unit u of layer L it is
//
//	sum over n in L+1 of weights[u][n] * error[n]
//
// using the errors already finalized for L+1 on this pass. Every raw error is
// then scaled by SigmoidDerivative(activation[u]). Each error term is fully
// overwritten, so nothing leaks from a previous sample.
//
// Backward reads the activations left by the preceding Forward call. Called
// on a fresh network it runs against zero activations and does not fail.
// expected is never modified.
//
// Returns a *ShapeError when len(expected) differs from the output layer
// size; no error term is modified in that case.
func (n *Network) Backward(expected []float64) error {
	last := len(n.layers) - 1
	if len(expected) != len(n.layers[last]) {
		return &ShapeError{Op: "Backward", Want: len(n.layers[last]), Got: len(expected)}
	}
	n.backward(expected)
	return nil
}

// backward computes every error term. len(expected) must match the output
// layer.
func (n *Network) backward(expected []float64) {
	last := len(n.layers) - 1
	out := n.layers[last]
	for u := range out {
		raw := out[u].activation - expected[u]
		out[u].err = raw * SigmoidDerivative(out[u].activation)
	}

	for l := last - 1; l >= 0; l-- {
		cur, next := n.layers[l], n.layers[l+1]
		for u := range cur {
			var raw float64
			for i := range next {
				raw += cur[u].weights[i] * next[i].err
			}
			cur[u].err = raw * SigmoidDerivative(cur[u].activation)
		}
	}
}
