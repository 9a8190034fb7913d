// Package network implements a dense, fully connected feedforward network
// trained by online backpropagation with plain gradient descent.
//
// The network is stored as a sequence of layers, each a sequence of units.
// Every unit keeps the weights of its outgoing edges, so the weight of the
// edge from unit p of layer L to unit n of layer L+1 lives at
// layers[L][p].weights[n]. All addressing is positional and bounds-checked.
//
// A Network is not safe for concurrent use. Forward, Backward and
// UpdateWeights communicate through the activations and error terms stored on
// the units, so a training step must run them in that order for one sample
// before the next sample begins:
//
//	out, err := net.Forward(input)      // fills activations
//	err = net.Backward(expected)        // reads activations, fills errors
//	net.UpdateWeights(learningRate)     // reads both, moves weights
//
// Train composes the three for a whole dataset.
package network

import (
	"math/rand/v2"
)

// MinLayers is the smallest valid network: an input and an output layer.
const MinLayers = 2

// Network is a fully connected feedforward network.
//
// Topology is fixed at construction. Only activations, error terms and
// weight values change afterwards.
type Network struct {
	layers []Layer
}

// New builds a network with one layer per entry of sizes, each holding that
// many units. Every unit of a non-terminal layer receives one weight per unit
// of the following layer, drawn uniformly from [0, 1) using src. Activations
// and error terms start at zero.
//
// Returns an error wrapping ErrConstruction when sizes has fewer than two
// entries or any entry is below one. No network is returned in that case.
//
// Example:
//
//	net, err := network.New([]int{2, 3, 1}, rand.NewPCG(1, 2))
func New(sizes []int, src rand.Source) (*Network, error) {
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}

	dist := newWeightDist(src)
	net := &Network{layers: make([]Layer, 0, len(sizes))}
	for _, size := range sizes {
		net.appendLayer(size, dist.Rand)
	}
	return net, nil
}

// ValidateSizes reports whether sizes describes a constructible network.
func ValidateSizes(sizes []int) error {
	if len(sizes) < MinLayers {
		return &TopologyError{
			Sizes:   append([]int(nil), sizes...),
			Layer:   -1,
			Details: "network must have at least 2 layers",
		}
	}
	for i, size := range sizes {
		if size < 1 {
			return &TopologyError{
				Sizes:   append([]int(nil), sizes...),
				Layer:   i,
				Details: "layer must have at least 1 unit",
			}
		}
	}
	return nil
}

// appendLayer wires a new layer of size units onto the current last layer:
// every unit already there gains one weight per new unit.
func (n *Network) appendLayer(size int, draw func() float64) {
	if len(n.layers) > 0 {
		prev := n.layers[len(n.layers)-1]
		for p := range prev {
			prev[p].weights = make([]float64, size)
			for i := range prev[p].weights {
				prev[p].weights[i] = draw()
			}
		}
	}
	n.layers = append(n.layers, make(Layer, size))
}

// NumLayers returns the number of layers, input and output included.
func (n *Network) NumLayers() int {
	return len(n.layers)
}

// Sizes returns the unit count of every layer.
func (n *Network) Sizes() []int {
	sizes := make([]int, len(n.layers))
	for i, layer := range n.layers {
		sizes[i] = len(layer)
	}
	return sizes
}

// InputSize returns the number of input units.
func (n *Network) InputSize() int {
	return len(n.layers[0])
}

// OutputSize returns the number of output units.
func (n *Network) OutputSize() int {
	return len(n.layers[len(n.layers)-1])
}

// Layer returns the layer at index. The returned slice aliases the network;
// callers must treat it as read-only.
func (n *Network) Layer(index int) (Layer, error) {
	if index < 0 || index >= len(n.layers) {
		return nil, indexError("layer", index, len(n.layers))
	}
	return n.layers[index], nil
}

// Unit returns the unit at position unit of layer layer.
func (n *Network) Unit(layer, unit int) (*Unit, error) {
	l, err := n.Layer(layer)
	if err != nil {
		return nil, err
	}
	if unit < 0 || unit >= len(l) {
		return nil, indexError("unit", unit, len(l))
	}
	return &l[unit], nil
}

// LayerActivations returns a copy of the activations of the layer at index.
//
// An out-of-range index yields an empty slice rather than an error.
func (n *Network) LayerActivations(index int) []float64 {
	l, err := n.Layer(index)
	if err != nil {
		return []float64{}
	}
	return l.Activations()
}

// LayerErrors returns a copy of the error terms of the layer at index, or an
// empty slice for an out-of-range index.
func (n *Network) LayerErrors(index int) []float64 {
	l, err := n.Layer(index)
	if err != nil {
		return []float64{}
	}
	return l.Errors()
}

// Output returns a copy of the output layer activations.
func (n *Network) Output() []float64 {
	return n.layers[len(n.layers)-1].Activations()
}

// SetWeight overwrites the weight of the edge from unit of layer to unit
// target of the next layer.
func (n *Network) SetWeight(layer, unit, target int, w float64) error {
	u, err := n.Unit(layer, unit)
	if err != nil {
		return err
	}
	if target < 0 || target >= len(u.weights) {
		return indexError("weight", target, len(u.weights))
	}
	u.weights[target] = w
	return nil
}

// SetActivation overwrites the activation of a unit.
func (n *Network) SetActivation(layer, unit int, a float64) error {
	u, err := n.Unit(layer, unit)
	if err != nil {
		return err
	}
	u.activation = a
	return nil
}

// SetError overwrites the error term of a unit.
func (n *Network) SetError(layer, unit int, e float64) error {
	u, err := n.Unit(layer, unit)
	if err != nil {
		return err
	}
	u.err = e
	return nil
}

// FillWeights sets every weight in the network to w.
func (n *Network) FillWeights(w float64) {
	for _, layer := range n.layers {
		for p := range layer {
			for i := range layer[p].weights {
				layer[p].weights[i] = w
			}
		}
	}
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	c := &Network{layers: make([]Layer, len(n.layers))}
	for i, layer := range n.layers {
		c.layers[i] = make(Layer, len(layer))
		for p := range layer {
			c.layers[i][p] = Unit{
				activation: layer[p].activation,
				err:        layer[p].err,
				weights:    layer[p].Weights(),
			}
		}
	}
	return c
}

// NewZeroed builds a network like New but with every weight set to zero.
// Loaders use it as the target for restoring saved weights.
func NewZeroed(sizes []int) (*Network, error) {
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}

	net := &Network{layers: make([]Layer, 0, len(sizes))}
	for _, size := range sizes {
		net.appendLayer(size, func() float64 { return 0 })
	}
	return net, nil
}
