package network

// Forward propagates one input vector through the network and returns a copy
// of the output layer activations.
//
// The input is loaded into the input layer positionally. Every following
// unit u of layer L is then set to
//
//	Sigmoid(sum over p in L-1 of weights[p][u] * activation[p])
//
// Forward is deterministic for fixed weights and input, and mutates nothing
// but activations.
//
// Returns a *ShapeError when len(input) differs from the input layer size;
// the network is left untouched in that case.
func (n *Network) Forward(input []float64) ([]float64, error) {
	if err := n.loadInput("Forward", input); err != nil {
		return nil, err
	}
	n.propagate(Sigmoid)
	return n.Output(), nil
}

// ForwardLinear is Forward without the transfer function: each unit receives
// the plain weighted sum of the previous layer. It exists to check wiring and
// indexing; with every weight at 1.0 each unit holds the sum of the previous
// layer's activations.
func (n *Network) ForwardLinear(input []float64) ([]float64, error) {
	if err := n.loadInput("ForwardLinear", input); err != nil {
		return nil, err
	}
	n.propagate(func(x float64) float64 { return x })
	return n.Output(), nil
}

func (n *Network) loadInput(op string, input []float64) error {
	in := n.layers[0]
	if len(input) != len(in) {
		return &ShapeError{Op: op, Want: len(in), Got: len(input)}
	}
	n.setInput(input)
	return nil
}

// setInput copies input into the input layer. len(input) must match.
func (n *Network) setInput(input []float64) {
	in := n.layers[0]
	for i, x := range input {
		in[i].activation = x
	}
}

// propagate computes activations for layers 1..N-1 from the current input
// layer activations.
func (n *Network) propagate(transfer func(float64) float64) {
	for l := 1; l < len(n.layers); l++ {
		prev, cur := n.layers[l-1], n.layers[l]
		for u := range cur {
			var sum float64
			for p := range prev {
				sum += prev[p].weights[u] * prev[p].activation
			}
			cur[u].activation = transfer(sum)
		}
	}
}
