package serialization

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

// SafeTensors dtype names.
const (
	DTypeF16  = "F16"
	DTypeBF16 = "BF16"
	DTypeF32  = "F32"
	DTypeF64  = "F64"
	DTypeI32  = "I32"
	DTypeI64  = "I64"
	DTypeU8   = "U8"
	DTypeBool = "BOOL"
)

// DTypeName returns the SafeTensors name for dt.
func DTypeName(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, nil
	case tensor.Float64:
		return DTypeF64, nil
	case tensor.Int32:
		return DTypeI32, nil
	case tensor.Int64:
		return DTypeI64, nil
	case tensor.Uint8:
		return DTypeU8, nil
	case tensor.Bool:
		return DTypeBool, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

// ParseDType maps a SafeTensors dtype name to a tensor.DataType. F16 and
// BF16 are recognised but unsupported.
func ParseDType(name string) (tensor.DataType, error) {
	switch name {
	case DTypeF32:
		return tensor.Float32, nil
	case DTypeF64:
		return tensor.Float64, nil
	case DTypeI32:
		return tensor.Int32, nil
	case DTypeI64:
		return tensor.Int64, nil
	case DTypeU8:
		return tensor.Uint8, nil
	case DTypeBool:
		return tensor.Bool, nil
	case DTypeF16, DTypeBF16:
		return 0, fmt.Errorf("%w: %s requires conversion", ErrUnsupportedDType, name)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, name)
	}
}
