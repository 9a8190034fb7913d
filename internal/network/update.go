package network

// UpdateWeights takes one gradient descent step using the error terms from
// the last Backward call and the activations from the last Forward call:
//
//	weights[p][n] -= learningRate * error[n] * activation[p]
//
// for every unit p of layers 0..N-2 and every unit n of the layer after it.
// Each weight is touched exactly once, so update order is irrelevant.
func (n *Network) UpdateWeights(learningRate float64) {
	for l := 0; l < len(n.layers)-1; l++ {
		cur, next := n.layers[l], n.layers[l+1]
		for p := range cur {
			a := cur[p].activation
			w := cur[p].weights
			for i := range next {
				w[i] -= learningRate * next[i].err * a
			}
		}
	}
}
