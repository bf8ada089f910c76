package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend satisfies Backend for creation helpers; compute methods are never called.
type stubBackend struct {
	Backend
}

func (stubBackend) Name() string   { return "stub" }
func (stubBackend) Device() Device { return CPU }

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestParseDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64, Uint8, Bool} {
		got, err := ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}

	_, err := ParseDataType("complex128")
	assert.Error(t, err)
}

func TestDataTypeClasses(t *testing.T) {
	assert.True(t, Float32.IsFloat())
	assert.True(t, Float64.IsFloat())
	assert.False(t, Int32.IsFloat())
	assert.True(t, Int32.IsInteger())
	assert.True(t, Int64.IsInteger())
	assert.False(t, Uint8.IsInteger())
	assert.False(t, Bool.IsInteger())
}

func TestFromSliceAndAt(t *testing.T) {
	b := stubBackend{}
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, b)
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, Float64, x.DType())
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 2.0, x.At(0, 1))
	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
}

func TestFromSliceSizeMismatch(t *testing.T) {
	_, err := FromSlice([]int32{1, 2, 3}, Shape{2, 2}, stubBackend{})
	assert.Error(t, err)
}

func TestNewDTypeMismatchPanics(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32, CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { New[int32](raw, stubBackend{}) })
}

func TestScalarAndItem(t *testing.T) {
	s := Scalar[int64](7, stubBackend{})
	assert.Empty(t, s.Shape())
	assert.Equal(t, int64(7), s.Item())
	assert.Equal(t, 7.0, s.Raw().ScalarFloat64())
}

func TestArange(t *testing.T) {
	a, err := Arange[int32](5, stubBackend{})
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, a.Data())

	f, err := Arange[float64](3, stubBackend{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, f.Data())

	_, err = Arange[int32](0, stubBackend{})
	assert.Error(t, err)
}

func TestRawFloat64Conversion(t *testing.T) {
	values := []float64{0, 1, 2, 3}
	for _, dt := range []DataType{Float32, Float64, Int32, Int64, Uint8} {
		raw, err := FromFloat64s(values, Shape{2, 2}, dt, CPU)
		require.NoError(t, err, dt.String())
		assert.Equal(t, values, raw.Float64s(), dt.String())
	}

	mask, err := FromFloat64s([]float64{0, 2, 0}, Shape{3}, Bool, CPU)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, mask.AsBool())
	assert.Equal(t, []float64{0, 1, 0}, mask.Float64s())
}

func TestRawWrongViewPanics(t *testing.T) {
	raw, err := NewRaw(Shape{3}, Int64, CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { raw.AsInt32() })
	assert.Panics(t, func() { raw.AsFloat64() })
}

func TestReshapedSharesStorage(t *testing.T) {
	raw, err := FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64, CPU)
	require.NoError(t, err)

	view, err := raw.Reshaped(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, view.Strides())
	raw.AsFloat64()[0] = 42
	assert.Equal(t, 42.0, view.AsFloat64()[0])

	_, err = raw.Reshaped(Shape{4})
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	raw, err := FromFloat64s([]float64{1, 2}, Shape{2}, Float32, CPU)
	require.NoError(t, err)

	c := raw.Clone()
	c.AsFloat32()[0] = 9
	assert.Equal(t, float32(1), raw.AsFloat32()[0])
}
