package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/backprop/internal/network"
)

// UnitRecord is the JSON form of one unit.
type UnitRecord struct {
	Activation float64   `json:"activation"`
	Error      float64   `json:"error"`
	Weights    []float64 `json:"weights"`
}

// Document is the JSON text form of a network: one record per unit, grouped
// by layer.
type Document struct {
	FormatVersion int               `json:"format_version"`
	SnapshotID    string            `json:"snapshot_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Training      *TrainingMeta     `json:"training,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Layers        [][]UnitRecord    `json:"layers"`
}

// NewDocument captures the state of every unit of net.
func NewDocument(net *network.Network, opts Options) (*Document, error) {
	if net == nil {
		return nil, ErrNilNetwork
	}

	id := opts.SnapshotID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := opts.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	doc := &Document{
		FormatVersion: FormatVersion,
		SnapshotID:    id.String(),
		CreatedAt:     created,
		Training:      opts.Training,
		Metadata:      opts.Metadata,
		Layers:        make([][]UnitRecord, net.NumLayers()),
	}
	for l := range doc.Layers {
		layer, err := net.Layer(l)
		if err != nil {
			return nil, err
		}
		doc.Layers[l] = make([]UnitRecord, len(layer))
		for u := range layer {
			doc.Layers[l][u] = UnitRecord{
				Activation: layer[u].Activation(),
				Error:      layer[u].Error(),
				Weights:    layer[u].Weights(),
			}
		}
	}
	return doc, nil
}

// Network rebuilds the network described by the document.
func (d *Document) Network() (*network.Network, error) {
	sizes := make([]int, len(d.Layers))
	for l, layer := range d.Layers {
		sizes[l] = len(layer)
	}
	net, err := network.NewZeroed(sizes)
	if err != nil {
		return nil, err
	}

	for l, layer := range d.Layers {
		want := 0
		if l < len(sizes)-1 {
			want = sizes[l+1]
		}
		for u, rec := range layer {
			if len(rec.Weights) != want {
				return nil, &ValidationError{
					Type:    "shape_mismatch",
					Details: fmt.Sprintf("layer %d unit %d has %d weights, expected %d", l, u, len(rec.Weights), want),
					Err:     ErrShapeMismatch,
				}
			}
			if err := net.SetActivation(l, u, rec.Activation); err != nil {
				return nil, err
			}
			if err := net.SetError(l, u, rec.Error); err != nil {
				return nil, err
			}
			for n, w := range rec.Weights {
				if err := net.SetWeight(l, u, n, w); err != nil {
					return nil, err
				}
			}
		}
	}
	return net, nil
}

// EncodeJSON writes net to w as an indented JSON document.
func EncodeJSON(w io.Writer, net *network.Network, opts Options) error {
	doc, err := NewDocument(net, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return nil
}

// DecodeJSON reads a JSON document written by EncodeJSON.
func DecodeJSON(r io.Reader) (*network.Network, *Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode network: %w", err)
	}
	if doc.FormatVersion != FormatVersion {
		return nil, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, doc.FormatVersion, FormatVersion)
	}
	net, err := doc.Network()
	if err != nil {
		return nil, nil, err
	}
	return net, &doc, nil
}
