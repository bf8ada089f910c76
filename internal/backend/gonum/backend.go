// Package gonum implements tensor.Backend on top of gonum's floats and mat
// packages.
//
// Every operation is evaluated in float64 and converted back to the input
// dtype, so integer tensors are exact only within ±2^53.
package gonum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/perplexity/internal/tensor"
)

// Backend is the gonum-backed tensor backend.
type Backend struct {
	device tensor.Device
}

// New creates a gonum backend.
func New() *Backend {
	return &Backend{device: tensor.CPU}
}

// Name returns the backend name.
func (g *Backend) Name() string {
	return "Gonum"
}

// Device returns the compute device.
func (g *Backend) Device() tensor.Device {
	return g.device
}

// Mul performs element-wise multiplication with broadcasting.
func (g *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType("mul", a, b)
	if !a.DType().IsFloat() && !a.DType().IsInteger() {
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}
	outShape, av, bv := broadcastOperands("mul", a, b)
	floats.MulTo(av, av, bv)
	return g.wrap("mul", av, outShape, a.DType())
}

// Equal returns a == b element-wise as a bool tensor.
func (g *Backend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return g.compare("equal", a, b, false)
}

// NotEqual returns a != b element-wise as a bool tensor.
func (g *Backend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return g.compare("notEqual", a, b, true)
}

func (g *Backend) compare(op string, a, b *tensor.RawTensor, negate bool) *tensor.RawTensor {
	requireSameDType(op, a, b)
	outShape, av, bv := broadcastOperands(op, a, b)
	for i := range av {
		if (av[i] == bv[i]) != negate {
			av[i] = 1
		} else {
			av[i] = 0
		}
	}
	return g.wrap(op, av, outShape, tensor.Bool)
}

// Gather selects elements along dim using an int32 index tensor.
//
// The input is viewed as an outer × (size·inner) mat.Dense so that gathering
// along any dim is a row/column lookup.
func (g *Backend) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	if index.DType() != tensor.Int32 {
		panic(fmt.Sprintf("gather: index tensor must have dtype int32, got %s", index.DType()))
	}
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("gather: %v", err))
	}
	indexShape := index.Shape()
	if len(indexShape) != len(shape) {
		panic(fmt.Sprintf("gather: index rank %d != input rank %d", len(indexShape), len(shape)))
	}
	for i := range shape {
		if i != dim && indexShape[i] != shape[i] {
			panic(fmt.Sprintf("gather: index shape mismatch at dim %d: %d != %d", i, indexShape[i], shape[i]))
		}
	}

	outer, size, inner := shape.SplitAt(dim)
	src := mat.NewDense(outer, size*inner, x.Float64s())
	picked := indexShape[dim]
	indices := index.AsInt32()

	out := make([]float64, len(indices))
	for o := 0; o < outer; o++ {
		for j := 0; j < picked; j++ {
			for i := 0; i < inner; i++ {
				pos := (o*picked+j)*inner + i
				k := int(indices[pos])
				if k < 0 || k >= size {
					panic(fmt.Sprintf("gather: index %d out of bounds [0, %d) at position %d", k, size, pos))
				}
				out[pos] = src.At(o, k*inner+i)
			}
		}
	}
	return g.wrap("gather", out, indexShape, x.DType())
}

// Unsqueeze inserts a dimension of size 1 at dim. This is a view operation.
func (g *Backend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape, err := x.Shape().Unsqueezed(dim)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return reshapeView("unsqueeze", x, shape)
}

// Squeeze removes the size-1 dimension at dim. This is a view operation.
func (g *Backend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape, err := x.Shape().Squeezed(dim)
	if err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	return reshapeView("squeeze", x, shape)
}

// Cast converts x to dtype through float64.
func (g *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}
	return g.wrap("cast", x.Float64s(), x.Shape(), dtype)
}

// Sum computes the total sum of all elements (scalar result).
func (g *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	requireNumeric("sum", x)
	return g.wrap("sum", []float64{floats.Sum(x.Float64s())}, tensor.Shape{}, x.DType())
}

// SumDim sums along dim. Rows of the outer × (size·inner) view are reduced
// with floats.Sum when dim is the last axis.
func (g *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	requireNumeric("sumdim", x)
	shape := x.Shape()
	outShape, err := shape.Reduced(dim, keepDim)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}
	dim, _ = tensor.NormalizeDim(dim, len(shape))

	outer, size, inner := shape.SplitAt(dim)
	src := mat.NewDense(outer, size*inner, x.Float64s())
	out := make([]float64, outer*inner)
	column := make([]float64, size)

	for o := 0; o < outer; o++ {
		row := src.RawRowView(o)
		if inner == 1 {
			out[o] = floats.Sum(row)
			continue
		}
		for i := 0; i < inner; i++ {
			for k := 0; k < size; k++ {
				column[k] = row[k*inner+i]
			}
			out[o*inner+i] = floats.Sum(column)
		}
	}
	return g.wrap("sumdim", out, outShape, x.DType())
}

// Exp computes element-wise exponential: exp(x).
func (g *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("exp: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	values := x.Float64s()
	m := mat.NewDense(1, len(values), values)
	m.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m)
	return g.wrap("exp", values, x.Shape(), x.DType())
}

func (g *Backend) wrap(op string, values []float64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out, err := tensor.FromFloat64s(values, shape, dtype, g.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return out
}

// broadcastOperands returns the broadcast shape and both operands expanded
// to it as fresh float64 slices.
func broadcastOperands(op string, a, b *tensor.RawTensor) (tensor.Shape, []float64, []float64) {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	av, bv := a.Float64s(), b.Float64s()
	if a.Shape().Equal(b.Shape()) {
		return outShape, av, bv
	}

	n := outShape.NumElements()
	ae, be := make([]float64, n), make([]float64, n)
	tensor.ForEachBroadcast(outShape,
		tensor.BroadcastStrides(a.Shape(), outShape),
		tensor.BroadcastStrides(b.Shape(), outShape),
		func(i, ai, bi int) {
			ae[i] = av[ai]
			be[i] = bv[bi]
		})
	return outShape, ae, be
}

func reshapeView(op string, x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, err := x.Reshaped(shape)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return out
}

func requireSameDType(op string, a, b *tensor.RawTensor) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}

func requireNumeric(op string, x *tensor.RawTensor) {
	if !x.DType().IsFloat() && !x.DType().IsInteger() {
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
}
