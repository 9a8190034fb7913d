package network

// Unit is a single neuron.
//
// A unit stores the weights of its outgoing edges, one per unit of the next
// layer and indexed by that unit's position. Units of the output layer have
// no outgoing weights.
type Unit struct {
	activation float64
	err        float64
	weights    []float64
}

// Activation returns the last computed output of the unit. For input units
// this is the raw input value.
func (u *Unit) Activation() float64 {
	return u.activation
}

// Error returns the backpropagated error term (delta). It is only meaningful
// after a backward pass.
func (u *Unit) Error() float64 {
	return u.err
}

// Weights returns a copy of the outgoing edge weights.
func (u *Unit) Weights() []float64 {
	out := make([]float64, len(u.weights))
	copy(out, u.weights)
	return out
}

// NumWeights returns the number of outgoing edges.
func (u *Unit) NumWeights() int {
	return len(u.weights)
}

// Weight returns the weight of the edge to unit target of the next layer.
func (u *Unit) Weight(target int) (float64, error) {
	if target < 0 || target >= len(u.weights) {
		return 0, indexError("weight", target, len(u.weights))
	}
	return u.weights[target], nil
}

// Layer is an ordered group of units. Position is the only addressing
// mechanism.
type Layer []Unit

// Activations returns the activations of every unit in order.
func (l Layer) Activations() []float64 {
	out := make([]float64, len(l))
	for i := range l {
		out[i] = l[i].activation
	}
	return out
}

// Errors returns the error terms of every unit in order.
func (l Layer) Errors() []float64 {
	out := make([]float64, len(l))
	for i := range l {
		out[i] = l[i].err
	}
	return out
}
