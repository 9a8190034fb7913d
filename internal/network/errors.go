package network

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrConstruction    = errors.New("invalid network topology")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrShapeMismatch   = errors.New("shape mismatch")
)

// TopologyError describes why a layer-size sequence cannot produce a network.
type TopologyError struct {
	Sizes   []int  // Requested layer sizes
	Layer   int    // Offending layer index, -1 when the sequence itself is invalid
	Details string // Additional details
}

// Error implements the error interface.
func (e *TopologyError) Error() string {
	if e.Layer < 0 {
		return fmt.Sprintf("%v: sizes %v: %s", ErrConstruction, e.Sizes, e.Details)
	}
	return fmt.Sprintf("%v: layer %d of %v: %s", ErrConstruction, e.Layer, e.Sizes, e.Details)
}

// Unwrap allows errors.Is(err, ErrConstruction).
func (e *TopologyError) Unwrap() error {
	return ErrConstruction
}

// ShapeError reports a vector whose length does not match the layer it feeds.
type ShapeError struct {
	Op   string // Operation that rejected the vector (e.g. "Forward")
	Want int
	Got  int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: expected %d values, got %d", e.Op, ErrShapeMismatch, e.Want, e.Got)
}

// Unwrap allows errors.Is(err, ErrShapeMismatch).
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func indexError(what string, index, length int) error {
	return fmt.Errorf("%s %d (length %d): %w", what, index, length, ErrIndexOutOfRange)
}
