package serialization

import (
	"fmt"
	"time"
)

// Format constants.
const (
	MagicBytes      = "BPNN"
	FormatVersion   = 1
	HeaderAlignment = 64 // Align tensor data to 64 bytes
	FixedHeaderSize = 64 // Fixed prefix before the JSON header
	ChecksumSize    = 32 // SHA-256 checksum size
	ChecksumOffset  = 0x20
	ValueSize       = 8 // Every stored value is a float64
	DTypeFloat64    = "float64"
)

// LibraryVersion is written into every header.
const LibraryVersion = "0.1.0"

// Flags for the .bpnn format.
const (
	FlagHasTraining uint32 = 1 << 0 // bit 0: training metadata included
	FlagHasMetadata uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header represents the JSON header in a .bpnn file.
type Header struct {
	FormatVersion  int               `json:"format_version"`     // Version of the .bpnn format
	LibraryVersion string            `json:"library_version"`    // Version of the library that wrote the file
	SnapshotID     string            `json:"snapshot_id"`        // Unique ID of this snapshot (UUID)
	CreatedAt      time.Time         `json:"created_at"`         // When the file was created
	Sizes          []int             `json:"sizes"`              // Units per layer
	Tensors        []TensorMeta      `json:"tensors"`            // Tensor metadata
	Training       *TrainingMeta     `json:"training,omitempty"` // Training state (optional)
	Metadata       map[string]string `json:"metadata"`           // Custom metadata

	Checksum string `json:"-"` // Hex SHA-256 of the data section, filled in by Encode and Decode
}

// TrainingMeta records how the saved weights were produced.
type TrainingMeta struct {
	Epochs       int     `json:"epochs"`        // Epochs run
	Error        float64 `json:"error"`         // Summed squared error of the last epoch
	Converged    bool    `json:"converged"`     // Whether the target error was reached
	LearningRate float64 `json:"learning_rate"` // Step size used
	TargetError  float64 `json:"target_error"`  // Convergence threshold used
}

// TensorMeta describes a tensor in the .bpnn file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layer.0.weights")
	DType  string `json:"dtype"`  // Always "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// NumElements returns the number of values described by the shape, or -1
// when a dimension is negative or the count exceeds MaxValues.
func (m TensorMeta) NumElements() int {
	n := 1
	for _, d := range m.Shape {
		var ok bool
		if n, ok = mulValues(n, d); !ok {
			return -1
		}
	}
	return n
}

// mulValues returns a*b when both are non-negative and the product fits in
// MaxValues.
func mulValues(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > MaxValues/a {
		return 0, false
	}
	return a * b, true
}

// Tensor name helpers.
func activationName(layer int) string { return fmt.Sprintf("layer.%d.activation", layer) }
func errorName(layer int) string      { return fmt.Sprintf("layer.%d.error", layer) }
func weightsName(layer int) string    { return fmt.Sprintf("layer.%d.weights", layer) }

// alignedSize returns pos rounded up to HeaderAlignment.
func alignedSize(pos int64) int64 {
	return pos + (HeaderAlignment-(pos%HeaderAlignment))%HeaderAlignment
}
