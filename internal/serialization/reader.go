package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/backprop/internal/network"
)

// ReaderOptions configures decoding.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Decode reads a .bpnn stream and rebuilds the network it describes.
func Decode(r io.Reader, opts ReaderOptions) (*network.Network, Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, Header{}, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return nil, Header{}, ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > MaxDataSize {
		return nil, Header{}, &ValidationError{
			Type:    "out_of_bounds",
			Details: fmt.Sprintf("data size %d exceeds max %d", dataSize, uint64(MaxDataSize)),
			Err:     ErrOutOfBounds,
		}
	}
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is capped by MaxHeaderSize
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	if padding := alignedSize(currentPos) - currentPos; padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, Header{}, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
			return nil, Header{}, err
		}
	}

	//nolint:gosec // G115: dataSize is capped by MaxDataSize
	if err := ValidateHeader(&header, int64(dataSize), opts.ValidationLevel); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	net, err := restore(&header, data)
	if err != nil {
		return nil, Header{}, err
	}
	header.Checksum = ChecksumHex(stored)
	return net, header, nil
}

// Unmarshal decodes a .bpnn byte slice with strict validation.
func Unmarshal(data []byte) (*network.Network, Header, error) {
	return Decode(bytes.NewReader(data), ReaderOptions{ValidationLevel: ValidationStrict})
}

// restore builds a network from header and data. Every tensor is resolved
// against data before the network is allocated, so the header cannot request
// more memory than the file actually carries.
func restore(h *Header, data []byte) (*network.Network, error) {
	if err := ValidateSizes(h.Sizes); err != nil {
		return nil, err
	}

	tensors := make(map[string]TensorMeta, len(h.Tensors))
	for _, t := range h.Tensors {
		tensors[t.Name] = t
	}
	values := func(name string, want int) ([]float64, error) {
		t, ok := tensors[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTensor, name)
		}
		avail := int64(len(data))
		if want < 0 || int64(want) > avail/ValueSize || t.Size != int64(want)*ValueSize ||
			t.Offset < 0 || t.Offset > avail-t.Size {
			return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, name)
		}
		out := make([]float64, want)
		raw := data[t.Offset : t.Offset+t.Size]
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*ValueSize:]))
		}
		return out, nil
	}

	type layerValues struct {
		acts, errs, weights []float64
	}
	layers := make([]layerValues, len(h.Sizes))
	for l, size := range h.Sizes {
		var err error
		if layers[l].acts, err = values(activationName(l), size); err != nil {
			return nil, err
		}
		if layers[l].errs, err = values(errorName(l), size); err != nil {
			return nil, err
		}
		if l < len(h.Sizes)-1 {
			// ValidateSizes bounds the product.
			if layers[l].weights, err = values(weightsName(l), size*h.Sizes[l+1]); err != nil {
				return nil, err
			}
		}
	}

	net, err := network.NewZeroed(h.Sizes)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}
	for l, size := range h.Sizes {
		for u := 0; u < size; u++ {
			if err := net.SetActivation(l, u, layers[l].acts[u]); err != nil {
				return nil, err
			}
			if err := net.SetError(l, u, layers[l].errs[u]); err != nil {
				return nil, err
			}
		}
		if l == len(h.Sizes)-1 {
			continue
		}
		next := h.Sizes[l+1]
		for u := 0; u < size; u++ {
			for n := 0; n < next; n++ {
				if err := net.SetWeight(l, u, n, layers[l].weights[u*next+n]); err != nil {
					return nil, err
				}
			}
		}
	}
	return net, nil
}

// Reader reads a network from a .bpnn file.
type Reader struct {
	file   *os.File
	header Header
	net    *network.Network
	closed bool
}

// NewReader opens a .bpnn file with default options (strict validation).
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// NewReaderWithOptions opens a .bpnn file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	net, header, err := Decode(file, opts)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &Reader{file: file, header: header, net: net}, nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns a list of all tensor names in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// Network returns the decoded network.
func (r *Reader) Network() *network.Network {
	return r.net
}

// Close closes the file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Load reads the network stored at path.
func Load(path string) (*network.Network, Header, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = r.Close() }()
	return r.Network(), r.Header(), nil
}
