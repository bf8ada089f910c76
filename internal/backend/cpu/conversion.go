package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Cast converts tensor to a different data type.
// Bool converts to 1/0; converting to bool yields v != 0.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := cpu.alloc("cast", x.Shape(), dtype)

	switch x.DType() {
	case tensor.Float32:
		castFrom(result, view[float32](x))
	case tensor.Float64:
		castFrom(result, view[float64](x))
	case tensor.Int32:
		castFrom(result, view[int32](x))
	case tensor.Int64:
		castFrom(result, view[int64](x))
	case tensor.Uint8:
		castFrom(result, view[uint8](x))
	case tensor.Bool:
		castFromBool(result, x.AsBool())
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}

	return result
}

func castFrom[S numeric](result *tensor.RawTensor, src []S) {
	switch result.DType() {
	case tensor.Float32:
		convert(view[float32](result), src)
	case tensor.Float64:
		convert(view[float64](result), src)
	case tensor.Int32:
		convert(view[int32](result), src)
	case tensor.Int64:
		convert(view[int64](result), src)
	case tensor.Uint8:
		convert(view[uint8](result), src)
	case tensor.Bool:
		dst := result.AsBool()
		for i, v := range src {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", result.DType()))
	}
}

func convert[D, S numeric](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}

func castFromBool(result *tensor.RawTensor, src []bool) {
	ones := make([]uint8, len(src))
	for i, v := range src {
		if v {
			ones[i] = 1
		}
	}
	castFrom(result, ones)
}
