// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/network"
	"github.com/born-ml/backprop/internal/serialization"
)

// Network is a fully connected feedforward network.
type Network = network.Network

// Layer is an ordered group of units.
type Layer = network.Layer

// Unit is a single neuron: activation, error term and outgoing weights.
type Unit = network.Unit

// TrainConfig holds the hyperparameters of Network.Train.
type TrainConfig = network.TrainConfig

// TrainResult summarizes a Network.Train call.
type TrainResult = network.TrainResult

// ShapeError reports a vector of the wrong length.
type ShapeError = network.ShapeError

// TopologyError reports an unusable layer-size sequence.
type TopologyError = network.TopologyError

// Errors.
var (
	ErrConstruction    = network.ErrConstruction
	ErrIndexOutOfRange = network.ErrIndexOutOfRange
	ErrShapeMismatch   = network.ErrShapeMismatch
	ErrInvalidConfig   = network.ErrInvalidConfig
)

// New builds a network with sizes[i] units in layer i, weights drawn
// uniformly from [0, 1) using src.
//
// Example:
//
//	net, err := nn.New([]int{4, 2, 1}, rand.NewPCG(42, 42))
func New(sizes []int, src rand.Source) (*Network, error) {
	return network.New(sizes, src)
}

// Sigmoid is the transfer function of every non-input unit.
func Sigmoid(x float64) float64 {
	return network.Sigmoid(x)
}

// Persistence

// SaveOptions controls what is stored alongside a network.
type SaveOptions = serialization.Options

// Header describes a saved network.
type Header = serialization.Header

// TrainingMeta records how saved weights were produced.
type TrainingMeta = serialization.TrainingMeta

// Save writes net to path in .bpnn format.
func Save(path string, net *Network, opts SaveOptions) error {
	return serialization.Save(path, net, opts)
}

// Load reads a network saved with Save.
func Load(path string) (*Network, Header, error) {
	return serialization.Load(path)
}

// Marshal returns the .bpnn encoding of net.
func Marshal(net *Network, opts SaveOptions) ([]byte, error) {
	return serialization.Marshal(net, opts)
}

// Unmarshal decodes a network produced by Marshal.
func Unmarshal(data []byte) (*Network, Header, error) {
	return serialization.Unmarshal(data)
}

// EncodeJSON writes net as a JSON document with one record per unit.
func EncodeJSON(w io.Writer, net *Network, opts SaveOptions) error {
	return serialization.EncodeJSON(w, net, opts)
}

// DecodeJSON reads a document written by EncodeJSON.
func DecodeJSON(r io.Reader) (*Network, error) {
	net, _, err := serialization.DecodeJSON(r)
	return net, err
}
