package tensor

import (
	"errors"
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor. An empty Shape is a scalar.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// ErrInvalidShape is returned by Shape.Validate.
var ErrInvalidShape = errors.New("invalid shape")

// maxElements bounds NumElements so that the byte size of any dtype fits int.
const maxElements = math.MaxInt / 8

// Validate checks that every dimension is positive and that the element
// count, and its byte size at 8 bytes per element, does not overflow int.
func (s Shape) Validate() error {
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be > 0)", ErrInvalidShape, i, dim)
		}
		if n > maxElements/dim {
			return fmt.Errorf("%w: %v has more than %d elements", ErrInvalidShape, []int(s), maxElements)
		}
		n *= dim
	}
	return nil
}

// Equal reports whether two shapes have the same rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides: stride[i] is the product of
// all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes applies NumPy broadcasting rules to a and b.
//
// Shapes are aligned from the right; a pair of dimensions is compatible when
// they are equal or one of them is 1. Missing leading dimensions count as 1.
// The returned flag is true when either input has to be broadcast.
//
//	(3, 1) + (3, 5) → (3, 5), true
//	(2, 3, 1) + (4) → (2, 3, 4), true
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < n; i++ {
		aDim, bDim := dimFromRight(a, i), dimFromRight(b, i)
		switch {
		case aDim == bDim:
			out[n-1-i] = aDim
		case aDim == 1:
			out[n-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			out[n-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, n-1-i, aDim, bDim)
		}
	}
	return out, needsBroadcast, nil
}

// BroadcastStrides returns strides that map a multi-index over out onto a
// flat offset into a tensor of shape s. Broadcast dimensions get stride 0.
// s must be broadcast-compatible with out.
func BroadcastStrides(s, out Shape) []int {
	src := s.ComputeStrides()
	strides := make([]int, len(out))
	shift := len(out) - len(s)
	for i := range out {
		j := i - shift
		if j < 0 || s[j] == 1 {
			continue
		}
		strides[i] = src[j]
	}
	return strides
}

func dimFromRight(s Shape, i int) int {
	idx := len(s) - 1 - i
	if idx < 0 {
		return 1
	}
	return s[idx]
}

// NormalizeDim resolves a possibly negative dimension index against rank
// ndim, so -1 names the last dimension.
func NormalizeDim(dim, ndim int) (int, error) {
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		return 0, fmt.Errorf("dimension %d out of range for %dD tensor", dim, ndim)
	}
	return dim, nil
}

// Unsqueezed returns s with a dimension of size 1 inserted at dim.
// Valid positions are [-(len(s)+1), len(s)].
func (s Shape) Unsqueezed(dim int) (Shape, error) {
	dim, err := NormalizeDim(dim, len(s)+1)
	if err != nil {
		return nil, err
	}
	out := make(Shape, 0, len(s)+1)
	out = append(out, s[:dim]...)
	out = append(out, 1)
	return append(out, s[dim:]...), nil
}

// Squeezed returns s with the size-1 dimension at dim removed.
func (s Shape) Squeezed(dim int) (Shape, error) {
	dim, err := NormalizeDim(dim, len(s))
	if err != nil {
		return nil, err
	}
	if s[dim] != 1 {
		return nil, fmt.Errorf("cannot squeeze dimension %d of size %d", dim, s[dim])
	}
	out := make(Shape, 0, len(s)-1)
	out = append(out, s[:dim]...)
	return append(out, s[dim+1:]...), nil
}

// Reduced returns the shape left after reducing over dim. With keepDim the
// reduced dimension stays as size 1.
func (s Shape) Reduced(dim int, keepDim bool) (Shape, error) {
	dim, err := NormalizeDim(dim, len(s))
	if err != nil {
		return nil, err
	}
	if keepDim {
		out := s.Clone()
		out[dim] = 1
		return out, nil
	}
	out := make(Shape, 0, len(s)-1)
	out = append(out, s[:dim]...)
	return append(out, s[dim+1:]...), nil
}

// SplitAt factors s around dim into (outer, size, inner) so that element
// (o, k, i) lives at flat offset (o*size+k)*inner + i.
func (s Shape) SplitAt(dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= s[i]
	}
	for i := dim + 1; i < len(s); i++ {
		inner *= s[i]
	}
	return outer, s[dim], inner
}

// ForEachBroadcast walks out in row-major order, calling fn with the flat
// output index and the matching flat offsets into two operands whose
// broadcast strides are aStrides and bStrides.
func ForEachBroadcast(out Shape, aStrides, bStrides []int, fn func(i, ai, bi int)) {
	n := out.NumElements()
	idx := make([]int, len(out))
	ai, bi := 0, 0

	for i := 0; i < n; i++ {
		fn(i, ai, bi)
		for d := len(out) - 1; d >= 0; d-- {
			idx[d]++
			ai += aStrides[d]
			bi += bStrides[d]
			if idx[d] < out[d] {
				break
			}
			ai -= aStrides[d] * out[d]
			bi -= bStrides[d] * out[d]
			idx[d] = 0
		}
	}
}
