package cpu

import (
	"github.com/born-ml/perplexity/internal/tensor"
)

// view returns the typed storage of r. T must match r's dtype.
func view[T tensor.DType](r *tensor.RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case uint8:
		return any(r.AsUint8()).([]T)
	case bool:
		return any(r.AsBool()).([]T)
	default:
		panic("unsupported type")
	}
}

// binaryOp writes op(a, b) into result, broadcasting a and b to outShape.
func binaryOp[T, R tensor.DType](result, a, b *tensor.RawTensor, outShape tensor.Shape, op func(x, y T) R) {
	dst := view[R](result)
	av, bv := view[T](a), view[T](b)

	if a.Shape().Equal(b.Shape()) {
		for i := range dst {
			dst[i] = op(av[i], bv[i])
		}
		return
	}

	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	tensor.ForEachBroadcast(outShape, aStrides, bStrides, func(i, ai, bi int) {
		dst[i] = op(av[ai], bv[bi])
	})
}
