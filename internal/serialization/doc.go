// Package serialization provides the native .bpnn format for saving and
// loading networks.
//
// The .bpnn format stores every unit's activation, error term and outgoing
// weights, so a loaded network is indistinguishable from the saved one:
//
//	Format Structure:
//	  [4 bytes: Magic "BPNN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [4 bytes: Reserved]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [8 bytes: Data Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Padding to 64-byte alignment]
//	  [Data: float64 LE values, one tensor per layer field]
//
// Tensors are named layer.<i>.activation, layer.<i>.error and
// layer.<i>.weights. The weights tensor of layer i has shape
// [size(i), size(i+1)] and is absent for the output layer.
//
// A JSON text form with one record per unit is also available through
// EncodeJSON and DecodeJSON.
//
// Example usage:
//
//	// Save a network
//	if err := serialization.Save("xor.bpnn", net, serialization.Options{}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	net, header, err := serialization.Load("xor.bpnn")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
