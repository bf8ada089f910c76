package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

// Sum computes the total sum of all elements in the tensor (scalar result).
// Float32 inputs are accumulated in float64.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.alloc("sum", tensor.Shape{}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		result.AsFloat32()[0] = float32(sum)
	case tensor.Float64:
		result.AsFloat64()[0] = sumOf(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumOf(x.AsInt32())
	case tensor.Int64:
		result.AsInt64()[0] = sumOf(x.AsInt64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x: [B, T, V]
//	backend.SumDim(x, -1, false)  // shape: [B, T]
//	backend.SumDim(x, 1, true)    // shape: [B, 1, V]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	outShape, err := shape.Reduced(dim, keepDim)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}
	dim, _ = tensor.NormalizeDim(dim, len(shape))

	result := cpu.alloc("sumdim", outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		sumDim(view[float32](result), view[float32](x), shape, dim)
	case tensor.Float64:
		sumDim(view[float64](result), view[float64](x), shape, dim)
	case tensor.Int32:
		sumDim(view[int32](result), view[int32](x), shape, dim)
	case tensor.Int64:
		sumDim(view[int64](result), view[int64](x), shape, dim)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}

	return result
}

func sumOf[T float64 | int32 | int64](data []T) T {
	var sum T
	for _, v := range data {
		sum += v
	}
	return sum
}

func sumDim[T float32 | float64 | int32 | int64](dst, src []T, shape tensor.Shape, dim int) {
	outer, size, inner := shape.SplitAt(dim)
	for o := 0; o < outer; o++ {
		base := o * size * inner
		for i := 0; i < inner; i++ {
			var sum T
			for k := 0; k < size; k++ {
				sum += src[base+k*inner+i]
			}
			dst[o*inner+i] = sum
		}
	}
}
