package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/born-ml/perplexity/internal/serialization"
	"github.com/born-ml/perplexity/internal/tensor"
)

// ErrTensorNotFound is returned when a requested tensor is not in the file.
var ErrTensorNotFound = errors.New("tensor not found")

// SafeTensorInfo describes a tensor in the SafeTensors header.
type SafeTensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section
}

// SafeTensorsHeader is the parsed JSON header.
type SafeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorInfo
}

// UnmarshalJSON splits "__metadata__" from the tensor entries.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// SafeTensorsReader reads SafeTensors files.
type SafeTensorsReader struct {
	file       *os.File
	header     SafeTensorsHeader
	dataOffset int64
	dataSize   int64
}

// NewSafeTensorsReader opens path and validates its header: every tensor
// must have a known dtype, a byte range matching its shape, and lie inside
// the data section without overlapping another tensor.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: path comes from the caller.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r, err := newReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func newReader(file *os.File) (*SafeTensorsReader, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("read header size: %w", err)
	}
	if headerSize > serialization.MaxHeaderSize || int64(headerSize) > stat.Size()-8 { //nolint:gosec // G115: bounded above.
		return nil, fmt.Errorf("%w: header size %d, file size %d", serialization.ErrHeaderTooLarge, headerSize, stat.Size())
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("parse header JSON: %w", err)
	}

	dataOffset := 8 + int64(headerSize) //nolint:gosec // G115: bounded above.
	r := &SafeTensorsReader{
		file:       file,
		header:     header,
		dataOffset: dataOffset,
		dataSize:   stat.Size() - dataOffset,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SafeTensorsReader) validate() error {
	metas := make([]serialization.TensorMeta, 0, len(r.header.Tensors))
	for name, info := range r.header.Tensors {
		dtype, err := serialization.ParseDType(info.DType)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		shape := tensor.Shape(info.Shape)
		if err := shape.Validate(); err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		start, end := info.DataOffsets[0], info.DataOffsets[1]
		size := end - start
		if want := int64(shape.NumElements() * dtype.Size()); size >= 0 && size != want {
			return &serialization.ValidationError{
				Kind:    serialization.ErrSizeMismatch,
				Tensor:  name,
				Details: fmt.Sprintf("%d bytes for %s%v, want %d", size, info.DType, info.Shape, want),
			}
		}
		metas = append(metas, serialization.TensorMeta{Name: name, Offset: start, Size: size})
	}
	return serialization.ValidateTensorOffsets(metas, r.dataSize)
}

// Close closes the file.
func (r *SafeTensorsReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the "__metadata__" map from the header (may be nil).
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names in sorted order.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns the header entry for name.
func (r *SafeTensorsReader) TensorInfo(name string) (*SafeTensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrTensorNotFound, name, r.TensorNames())
	}
	return &info, nil
}

// ReadTensorData reads the raw bytes of a tensor.
func (r *SafeTensorsReader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, info.DataOffsets[1]-info.DataOffsets[0])
	if _, err := r.file.ReadAt(data, r.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("read tensor %s: %w", name, err)
	}
	return data, nil
}

// LoadTensor reads a tensor into a RawTensor on backend's device.
func (r *SafeTensorsReader) LoadTensor(name string, backend tensor.Backend) (*tensor.RawTensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	dtype, err := serialization.ParseDType(info.DType)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(tensor.Shape(info.Shape).Clone(), dtype, backend.Device())
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	copy(raw.Data(), data)
	return raw, nil
}

// VerifyChecksum recomputes the SHA-256 of the data section and compares it
// with the serialization.MetadataChecksum entry. Files without one pass.
func (r *SafeTensorsReader) VerifyChecksum() error {
	stored, ok := r.header.Metadata[serialization.MetadataChecksum]
	if !ok {
		return nil
	}
	computed, err := serialization.ComputeChecksumReader(io.NewSectionReader(r.file, r.dataOffset, r.dataSize))
	if err != nil {
		return fmt.Errorf("checksum data section: %w", err)
	}
	return serialization.ValidateChecksum(computed, stored)
}
