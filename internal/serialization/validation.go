package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/backprop/internal/network"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxDataSize      = 1 << 32           // 4GB - maximum data section size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
	MaxValues        = MaxDataSize / ValueSize
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal skips the offset overlap scan.
	ValidationNormal
	// ValidationNone skips header validation (use only with trusted input).
	ValidationNone
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
				Err:     ErrNegativeOffset,
			}
		}

		if t.Offset > dataSize-t.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
					Err: ErrOffsetOverlap,
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that are too long or contain path or
// control characters.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
			Err:     ErrInvalidTensorName,
		}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..'",
			Err:     ErrInvalidTensorName,
		}
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator or null byte",
			Err:     ErrInvalidTensorName,
		}
	}
	return nil
}

// ValidateSizes checks that sizes is a constructible topology whose layers
// and weight matrices fit in a data section of at most MaxDataSize bytes.
func ValidateSizes(sizes []int) error {
	if err := network.ValidateSizes(sizes); err != nil {
		return &ValidationError{Type: "invalid_topology", Details: err.Error(), Err: err}
	}
	for l, size := range sizes {
		if size > MaxValues {
			return &ValidationError{
				Type:    "topology_too_large",
				Details: fmt.Sprintf("layer %d has %d units, max %d", l, size, MaxValues),
				Err:     ErrShapeMismatch,
			}
		}
		if l == len(sizes)-1 {
			continue
		}
		if _, ok := mulValues(size, sizes[l+1]); !ok {
			return &ValidationError{
				Type:    "topology_too_large",
				Details: fmt.Sprintf("layer %d weights %dx%d exceed %d values", l, size, sizes[l+1], MaxValues),
				Err:     ErrShapeMismatch,
			}
		}
	}
	return nil
}

// ValidateTopology checks that the header describes a constructible network
// and that every tensor the loader needs is present with the right shape and
// byte size.
func ValidateTopology(h *Header) error {
	if err := ValidateSizes(h.Sizes); err != nil {
		return err
	}

	byName := make(map[string]TensorMeta, len(h.Tensors))
	for _, t := range h.Tensors {
		byName[t.Name] = t
	}

	check := func(name string, shape []int) error {
		t, ok := byName[name]
		if !ok {
			return &ValidationError{Type: "missing_tensor", Tensor: name, Details: "not in header", Err: ErrMissingTensor}
		}
		if !equalShape(t.Shape, shape) {
			return &ValidationError{
				Type:    "shape_mismatch",
				Tensor:  name,
				Details: fmt.Sprintf("expected shape %v, got %v", shape, t.Shape),
				Err:     ErrShapeMismatch,
			}
		}
		n := t.NumElements()
		if t.DType != DTypeFloat64 || n < 0 || t.Size != int64(n)*ValueSize {
			return &ValidationError{
				Type:    "shape_mismatch",
				Tensor:  name,
				Details: fmt.Sprintf("dtype %q with %d bytes does not hold %d float64 values", t.DType, t.Size, n),
				Err:     ErrShapeMismatch,
			}
		}
		return nil
	}

	for l, size := range h.Sizes {
		if err := check(activationName(l), []int{size}); err != nil {
			return err
		}
		if err := check(errorName(l), []int{size}); err != nil {
			return err
		}
		if l < len(h.Sizes)-1 {
			if err := check(weightsName(l), []int{size, h.Sizes[l+1]}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}
	if err := ValidateTopology(h); err != nil {
		return err
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}
	return nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
