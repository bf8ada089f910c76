package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/born-ml/perplexity/internal/tensor"
)

// MetadataChecksum is the metadata key holding the SHA-256 of the data
// section.
const MetadataChecksum = "data_sha256"

// SafeTensorsWriter writes tensors in SafeTensors format.
type SafeTensorsWriter struct {
	w      io.Writer
	closer io.Closer
	closed bool
}

// TensorHeader describes one tensor in the SafeTensors header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// NewSafeTensorsWriter creates the file at path.
func NewSafeTensorsWriter(path string) (*SafeTensorsWriter, error) {
	//nolint:gosec // G304: path comes from the caller.
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &SafeTensorsWriter{w: file, closer: file}, nil
}

// NewSafeTensorsStream writes to an arbitrary io.Writer. Close does not
// close w.
func NewSafeTensorsStream(w io.Writer) *SafeTensorsWriter {
	return &SafeTensorsWriter{w: w}
}

// WriteSafeTensors writes tensors and metadata to a new file at path.
func WriteSafeTensors(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	writer, err := NewSafeTensorsWriter(path)
	if err != nil {
		return err
	}
	if err := writer.Write(tensors, metadata); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Write emits the header followed by every tensor's data, in alphabetical
// order by name. metadata is copied; MetadataChecksum is always set.
func (w *SafeTensorsWriter) Write(tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	digest := sha256.New()
	var offset int64
	for _, name := range names {
		raw := tensors[name]
		dtype, err := DTypeName(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}

		size := int64(raw.ByteSize())
		header[name] = TensorHeader{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
		digest.Write(raw.Data())
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetadataChecksum] = hex.EncodeToString(digest.Sum(nil))
	header["__metadata__"] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	// Pad with spaces so tensor data starts on an 8-byte boundary.
	if rem := len(headerJSON) % 8; rem != 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte{' '}, 8-rem)...)
	}

	if err := binary.Write(w.w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("write header size: %w", err)
	}
	if _, err := w.w.Write(headerJSON); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, name := range names {
		if _, err := w.w.Write(tensors[name].Data()); err != nil {
			return fmt.Errorf("write tensor %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying file, if the writer owns one.
func (w *SafeTensorsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
