// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a dense feedforward network trained by
// backpropagation.
//
// # Overview
//
// A Network is an ordered list of layers, each an ordered list of units.
// Every unit holds its activation, its error term (delta) and the weights of
// its edges to each unit of the next layer. All units except the inputs use
// the logistic sigmoid.
//
// Training is online stochastic gradient descent: one sample at a time,
// forward, backward, update.
//
// # Basic Usage
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/born-ml/backprop/nn"
//	)
//
//	func main() {
//	    net, err := nn.New([]int{2, 3, 1}, rand.NewPCG(1, 2))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := net.Train(inputs, expected, nn.TrainConfig{
//	        LearningRate: 0.65,
//	        TargetError:  0.05,
//	        MaxEpochs:    5000,
//	    })
//
//	    out, err := net.Forward([]float64{0, 1})
//	}
//
// # Manual Steps
//
// Train composes three steps that can also be driven by hand. They share
// state through the units, so they must run in this order for each sample:
//
//	out, err := net.Forward(input)  // activations
//	err = net.Backward(expected)    // error terms, reads activations
//	net.UpdateWeights(0.5)          // weights, reads both
//
// # Inspection
//
//	acts := net.LayerActivations(1)  // empty for an invalid index
//	unit, err := net.Unit(1, 0)
//	fmt.Println(unit.Activation(), unit.Error(), unit.Weights())
//
// # Persistence
//
//	err := nn.Save("model.bpnn", net, nn.SaveOptions{})
//	net, header, err := nn.Load("model.bpnn")
//
// EncodeJSON and DecodeJSON read and write a JSON document with one record
// per unit.
//
// # Errors
//
// Construction with fewer than two layers or an empty layer fails with
// ErrConstruction. Vectors whose length does not match the layer they feed
// fail with ErrShapeMismatch; inputs are never padded or truncated.
package nn
