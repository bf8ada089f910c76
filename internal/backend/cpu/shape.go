package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

// Unsqueeze inserts a dimension of size 1 at dim. Negative dims count from
// the end, so -1 appends a trailing axis. This is a view operation.
//
// Example:
//
//	targets: [B, T] → backend.Unsqueeze(targets, 2) → [B, T, 1]
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape, err := x.Shape().Unsqueezed(dim)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return reshapeView("unsqueeze", x, shape)
}

// Squeeze removes the size-1 dimension at dim.
//
// Panics if the dimension size is not 1. This is a view operation.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape, err := x.Shape().Squeezed(dim)
	if err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	return reshapeView("squeeze", x, shape)
}

func reshapeView(op string, x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, err := x.Reshaped(shape)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return out
}
