// Package tensor provides the core tensor types shared by the perplexity backends.
package tensor

import "fmt"

// DType is a constraint for supported tensor element types.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// Float is the subset of DType that can hold log-probabilities.
type Float interface {
	~float32 | ~float64
}

// Integer is the subset of DType that can hold token ids.
type Integer interface {
	~int32 | ~int64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether dt is a floating-point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsInteger reports whether dt is a signed integer type usable as token ids.
func (dt DataType) IsInteger() bool {
	return dt == Int32 || dt == Int64
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, error) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64, Uint8, Bool} {
		if dt.String() == s {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", s)
}

// inferDataType maps a Go element type to its DataType.
func inferDataType[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic(fmt.Sprintf("unsupported element type %T", zero))
	}
}
