package tensor

import "fmt"

// Tensor is a typed view over a RawTensor bound to a backend.
//
// Example:
//
//	backend := cpu.New()
//	t, _ := tensor.FromSlice([]float64{-1, -2}, tensor.Shape{1, 2}, backend)
//	sum := backend.Sum(t.Raw())
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps a RawTensor. It panics if raw's dtype does not match T.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	if want := inferDataType[T](); raw.DType() != want {
		panic(fmt.Sprintf("tensor.New: raw dtype %s does not match %s", raw.DType(), want))
	}
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, inferDataType[T](), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, b B) (*Tensor[T, B], error) {
	raw, err := NewRaw(shape, inferDataType[T](), b.Device())
	if err != nil {
		return nil, err
	}
	return New[T](raw, b), nil
}

// Scalar creates a 0-D tensor holding v.
func Scalar[T DType, B Backend](v T, b B) *Tensor[T, B] {
	raw, err := NewRaw(Shape{}, inferDataType[T](), b.Device())
	if err != nil {
		panic(err)
	}
	t := New[T](raw, b)
	t.Data()[0] = v
	return t
}

// Arange creates the 1-D tensor [0, 1, ..., n-1].
func Arange[T Integer | Float, B Backend](n int, b B) (*Tensor[T, B], error) {
	t, err := Zeros[T](Shape{n}, b)
	if err != nil {
		return nil, err
	}
	data := t.Data()
	for i := range data {
		data[i] = T(i)
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType {
	return t.raw.DType()
}

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B {
	return t.backend
}

// Data returns a typed slice view of the tensor's data.
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor[T, B]) Data() []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case int64:
		return any(t.raw.AsInt64()).([]T)
	case uint8:
		return any(t.raw.AsUint8()).([]T)
	case bool:
		return any(t.raw.AsBool()).([]T)
	default:
		panic("unsupported type")
	}
}

// Item returns the value of a one-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for one-element tensors, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T, B]) At(indices ...int) T {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}
	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return t.Data()[offset]
}

// String returns a short description of the tensor.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%s, backend=%s)", t.Shape(), t.DType(), t.backend.Name())
}
