package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

// Equal returns a == b element-wise as a bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("equal", a, b, false)
}

// NotEqual returns a != b element-wise as a bool tensor.
func (cpu *CPUBackend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("notEqual", a, b, true)
}

func (cpu *CPUBackend) compare(op string, a, b *tensor.RawTensor, negate bool) *tensor.RawTensor {
	requireSameDType(op, a, b)
	outShape := broadcastShape(op, a, b)
	result := cpu.alloc(op, outShape, tensor.Bool)

	switch a.DType() {
	case tensor.Float32:
		binaryOp(result, a, b, outShape, func(x, y float32) bool { return (x == y) != negate })
	case tensor.Float64:
		binaryOp(result, a, b, outShape, func(x, y float64) bool { return (x == y) != negate })
	case tensor.Int32:
		binaryOp(result, a, b, outShape, func(x, y int32) bool { return (x == y) != negate })
	case tensor.Int64:
		binaryOp(result, a, b, outShape, func(x, y int64) bool { return (x == y) != negate })
	case tensor.Uint8:
		binaryOp(result, a, b, outShape, func(x, y uint8) bool { return (x == y) != negate })
	case tensor.Bool:
		binaryOp(result, a, b, outShape, func(x, y bool) bool { return (x == y) != negate })
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}
