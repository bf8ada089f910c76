// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/perplexity/internal/tensor"
)

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the host device.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the untyped tensor storage passed to backends.
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor bound to backend B.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, cpu.New())
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.Zeros[T, B](shape, b)
}

// New wraps a raw tensor. It panics if raw's dtype does not match T.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a zero-filled raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat64s creates a raw tensor of dtype from float64 values.
func FromFloat64s(values []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.FromFloat64s(values, shape, dtype, device)
}

// ParseDataType parses a dtype name such as "float32".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}
