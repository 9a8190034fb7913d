package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/backprop/internal/network"
)

// Options controls what Encode writes besides the network itself.
type Options struct {
	SnapshotID uuid.UUID         // Snapshot ID (default: a new random UUID)
	CreatedAt  time.Time         // Creation time (default: now, UTC)
	Training   *TrainingMeta     // Optional training state
	Metadata   map[string]string // Optional custom metadata
}

// Encode writes net to w in .bpnn format and returns the header it wrote.
func Encode(w io.Writer, net *network.Network, opts Options) (Header, error) {
	if net == nil {
		return Header{}, ErrNilNetwork
	}

	header, data, err := buildPayload(net, opts)
	if err != nil {
		return Header{}, err
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return Header{}, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return Header{}, ErrHeaderTooLarge
	}

	flags := uint32(0)
	if header.Training != nil {
		flags |= FlagHasTraining
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	checksum := ComputeChecksum(data)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return Header{}, fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return Header{}, fmt.Errorf("failed to write header: %w", err)
	}

	currentPos := int64(FixedHeaderSize + len(headerJSON))
	if padding := alignedSize(currentPos) - currentPos; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return Header{}, fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return Header{}, fmt.Errorf("failed to write tensor data: %w", err)
	}
	header.Checksum = ChecksumHex(checksum)
	return header, nil
}

// Marshal returns the .bpnn encoding of net.
func Marshal(net *network.Network, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, net, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildPayload lays out every layer's activations, errors and weights as
// consecutive float64 tensors and describes them in a header.
func buildPayload(net *network.Network, opts Options) (Header, []byte, error) {
	id := opts.SnapshotID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := opts.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	header := Header{
		FormatVersion:  FormatVersion,
		LibraryVersion: LibraryVersion,
		SnapshotID:     id.String(),
		CreatedAt:      created,
		Sizes:          net.Sizes(),
		Training:       opts.Training,
		Metadata:       opts.Metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data []byte
	appendTensor := func(name string, shape []int, values []float64) {
		meta := TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  shape,
			Offset: int64(len(data)),
			Size:   int64(len(values) * ValueSize),
		}
		for _, v := range values {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
		header.Tensors = append(header.Tensors, meta)
	}

	sizes := header.Sizes
	for l := range sizes {
		layer, err := net.Layer(l)
		if err != nil {
			return Header{}, nil, err
		}
		appendTensor(activationName(l), []int{sizes[l]}, layer.Activations())
		appendTensor(errorName(l), []int{sizes[l]}, layer.Errors())

		if l == len(sizes)-1 {
			continue
		}
		weights := make([]float64, 0, sizes[l]*sizes[l+1])
		for u := range layer {
			weights = append(weights, layer[u].Weights()...)
		}
		appendTensor(weightsName(l), []int{sizes[l], sizes[l+1]}, weights)
	}

	return header, data, nil
}

// Writer writes networks to a .bpnn file.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .bpnn file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteNetwork writes net to the file.
func (w *Writer) WriteNetwork(net *network.Network, opts Options) (Header, error) {
	if w.closed {
		return Header{}, fmt.Errorf("writer is closed")
	}
	return Encode(w.file, net, opts)
}

// Close closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// Save writes net to path in .bpnn format.
func Save(path string, net *network.Network, opts Options) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	if _, err := w.WriteNetwork(net, opts); err != nil {
		_ = w.Close() // Best effort close on error
		return err
	}
	return w.Close()
}
