package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/parallel"
	"github.com/born-ml/perplexity/internal/tensor"
)

// Gather selects elements along dim using index tensor.
// Similar to torch.gather(input, dim, index).
//
// The index tensor must have dtype int32 and its shape must match input shape
// except at the gather dimension, where it can differ.
//
// Example:
//
//	input: [2, 3, 5] log-probabilities
//	index: [2, 3, 1] target ids
//	dim: 2
//	output: [2, 3, 1] where output[b,t,0] = input[b,t,index[b,t,0]]
func (cpu *CPUBackend) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	if index.DType() != tensor.Int32 {
		panic(fmt.Sprintf("gather: index tensor must have dtype int32, got %s", index.DType()))
	}

	ndim := len(x.Shape())
	dim, err := tensor.NormalizeDim(dim, ndim)
	if err != nil {
		panic(fmt.Sprintf("gather: %v", err))
	}

	indexShape := index.Shape()
	if len(indexShape) != ndim {
		panic(fmt.Sprintf("gather: index rank %d != input rank %d", len(indexShape), ndim))
	}
	for i := 0; i < ndim; i++ {
		if i != dim && indexShape[i] != x.Shape()[i] {
			panic(fmt.Sprintf("gather: index shape mismatch at dim %d: %d != %d",
				i, indexShape[i], x.Shape()[i]))
		}
	}

	result := cpu.alloc("gather", indexShape, x.DType())
	indices := index.AsInt32()

	switch x.DType() {
	case tensor.Float32:
		gather(view[float32](result), view[float32](x), indices, x.Shape(), indexShape, dim, cpu.parallel)
	case tensor.Float64:
		gather(view[float64](result), view[float64](x), indices, x.Shape(), indexShape, dim, cpu.parallel)
	case tensor.Int32:
		gather(view[int32](result), view[int32](x), indices, x.Shape(), indexShape, dim, cpu.parallel)
	case tensor.Int64:
		gather(view[int64](result), view[int64](x), indices, x.Shape(), indexShape, dim, cpu.parallel)
	case tensor.Uint8:
		gather(view[uint8](result), view[uint8](x), indices, x.Shape(), indexShape, dim, cpu.parallel)
	default:
		panic(fmt.Sprintf("gather: unsupported dtype %s", x.DType()))
	}

	return result
}

func gather[T tensor.DType](dst, src []T, indices []int32, srcShape, dstShape tensor.Shape, dim int, cfg parallel.Config) {
	ndim := len(srcShape)
	dstStrides := dstShape.ComputeStrides()
	srcStrides := srcShape.ComputeStrides()

	parallel.Range(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			indexVal := int(indices[i])
			if indexVal < 0 || indexVal >= srcShape[dim] {
				panic(fmt.Sprintf("gather: index %d out of bounds [0, %d) at position %d",
					indexVal, srcShape[dim], i))
			}

			srcIdx := 0
			remaining := i
			for d := 0; d < ndim; d++ {
				coord := remaining / dstStrides[d]
				remaining %= dstStrides[d]
				if d == dim {
					coord = indexVal
				}
				srcIdx += coord * srcStrides[d]
			}

			dst[i] = src[srcIdx]
		}
	}, cfg)
}
