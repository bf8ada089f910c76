package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perplexity/internal/parallel"
	"github.com/born-ml/perplexity/internal/tensor"
)

func raw(t *testing.T, values []float64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat64s(values, shape, dtype, tensor.CPU)
	require.NoError(t, err)
	return r
}

func TestBackendMetadata(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestMulSameShape(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.Float64)
	b := raw(t, []float64{2, 0, -1, 0.5}, tensor.Shape{2, 2}, tensor.Float64)

	out := backend.Mul(a, b)

	assert.Equal(t, []float64{2, 0, -3, 2}, out.AsFloat64())
	assert.Equal(t, []float64{1, 2, 3, 4}, a.AsFloat64(), "inputs must not be modified")
}

func TestMulBroadcast(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float32)
	col := raw(t, []float64{10, 100}, tensor.Shape{2, 1}, tensor.Float32)

	out := backend.Mul(a, col)

	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{10, 20, 30, 400, 500, 600}, out.AsFloat32())

	scalar := raw(t, []float64{-1}, tensor.Shape{}, tensor.Float32)
	neg := backend.Mul(a, scalar)
	assert.Equal(t, []float32{-1, -2, -3, -4, -5, -6}, neg.AsFloat32())
}

func TestMulPanics(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	b := raw(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float64)
	c := raw(t, []float64{1, 2, 3}, tensor.Shape{3}, tensor.Float32)

	assert.Panics(t, func() { backend.Mul(a, b) })
	assert.Panics(t, func() { backend.Mul(a, c) })
}

func TestEqualNotEqual(t *testing.T) {
	backend := New()
	targets := raw(t, []float64{3, 0, 2, 0}, tensor.Shape{2, 2}, tensor.Int64)
	pad := raw(t, []float64{0}, tensor.Shape{}, tensor.Int64)

	assert.Equal(t, []bool{false, true, false, true}, backend.Equal(targets, pad).AsBool())
	assert.Equal(t, []bool{true, false, true, false}, backend.NotEqual(targets, pad).AsBool())
}

func TestEqualOneHotBroadcast(t *testing.T) {
	backend := New()
	idx := raw(t, []float64{2, 0}, tensor.Shape{2, 1}, tensor.Int32)
	classes := raw(t, []float64{0, 1, 2}, tensor.Shape{3}, tensor.Int32)

	onehot := backend.Equal(idx, classes)

	assert.Equal(t, tensor.Shape{2, 3}, onehot.Shape())
	assert.Equal(t, []bool{false, false, true, true, false, false}, onehot.AsBool())
}

func TestGatherLastDim(t *testing.T) {
	backend := New()
	x := raw(t, []float64{
		0, 1, 2, 3,
		10, 11, 12, 13,
		20, 21, 22, 23,
	}, tensor.Shape{1, 3, 4}, tensor.Float64)
	index := raw(t, []float64{3, 0, 2}, tensor.Shape{1, 3, 1}, tensor.Int32)

	out := backend.Gather(x, 2, index)

	assert.Equal(t, tensor.Shape{1, 3, 1}, out.Shape())
	assert.Equal(t, []float64{3, 10, 22}, out.AsFloat64())
}

func TestGatherParallelMatchesSequential(t *testing.T) {
	const b, s, v = 8, 64, 16
	values := make([]float64, b*s*v)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	ids := make([]float64, b*s)
	for i := range ids {
		ids[i] = float64((i * 7) % v)
	}
	x := raw(t, values, tensor.Shape{b, s, v}, tensor.Float32)
	index := raw(t, ids, tensor.Shape{b, s, 1}, tensor.Int32)

	seq := NewWithConfig(parallel.Sequential()).Gather(x, -1, index)
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}).Gather(x, -1, index)

	assert.Equal(t, seq.AsFloat32(), par.AsFloat32())
	for i, id := range ids {
		assert.Equal(t, float32(values[i*v+int(id)]), seq.AsFloat32()[i])
	}
}

func TestGatherPanics(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())
	x := raw(t, []float64{1, 2, 3, 4}, tensor.Shape{1, 2, 2}, tensor.Float64)

	badDType := raw(t, []float64{0, 1}, tensor.Shape{1, 2, 1}, tensor.Int64)
	assert.Panics(t, func() { backend.Gather(x, 2, badDType) })

	outOfRange := raw(t, []float64{0, 2}, tensor.Shape{1, 2, 1}, tensor.Int32)
	assert.Panics(t, func() { backend.Gather(x, 2, outOfRange) })

	badShape := raw(t, []float64{0, 1, 0}, tensor.Shape{1, 3, 1}, tensor.Int32)
	assert.Panics(t, func() { backend.Gather(x, 2, badShape) })
}

func TestUnsqueezeSqueeze(t *testing.T) {
	backend := New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Int32)

	u := backend.Unsqueeze(x, 2)
	assert.Equal(t, tensor.Shape{2, 3, 1}, u.Shape())
	assert.Equal(t, x.AsInt32(), u.AsInt32())

	s := backend.Squeeze(u, -1)
	assert.Equal(t, tensor.Shape{2, 3}, s.Shape())

	assert.Panics(t, func() { backend.Squeeze(x, 0) })
	assert.Panics(t, func() { backend.Unsqueeze(x, 4) })
}

func TestCast(t *testing.T) {
	backend := New()
	mask := raw(t, []float64{1, 0, 1}, tensor.Shape{3}, tensor.Bool)

	f := backend.Cast(mask, tensor.Float32)
	assert.Equal(t, []float32{1, 0, 1}, f.AsFloat32())

	ids := raw(t, []float64{5, 0, 7}, tensor.Shape{3}, tensor.Int64)
	i32 := backend.Cast(ids, tensor.Int32)
	assert.Equal(t, []int32{5, 0, 7}, i32.AsInt32())

	b := backend.Cast(ids, tensor.Bool)
	assert.Equal(t, []bool{true, false, true}, b.AsBool())

	same := backend.Cast(ids, tensor.Int64)
	same.AsInt64()[0] = 99
	assert.Equal(t, int64(5), ids.AsInt64()[0], "same-dtype cast must copy")
}

func TestSum(t *testing.T) {
	backend := New()

	f := backend.Sum(raw(t, []float64{-1, -2, 0.5}, tensor.Shape{3}, tensor.Float64))
	assert.Empty(t, f.Shape())
	assert.InDelta(t, -2.5, f.AsFloat64()[0], 1e-12)

	f32 := backend.Sum(raw(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.Float32))
	assert.Equal(t, float32(10), f32.AsFloat32()[0])

	i := backend.Sum(raw(t, []float64{1, 2, 3}, tensor.Shape{3}, tensor.Int64))
	assert.Equal(t, int64(6), i.AsInt64()[0])

	assert.Panics(t, func() { backend.Sum(raw(t, []float64{1}, tensor.Shape{1}, tensor.Bool)) })
}

func TestSumDim(t *testing.T) {
	backend := New()
	x := raw(t, []float64{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{2, 3}, tensor.Float64)

	rows := backend.SumDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.AsFloat64())

	cols := backend.SumDim(x, 0, true)
	assert.Equal(t, tensor.Shape{1, 3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.AsFloat64())

	last := backend.SumDim(raw(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}, tensor.Int32), -1, false)
	assert.Equal(t, []int32{3, 7, 11, 15}, last.AsInt32())

	assert.Panics(t, func() { backend.SumDim(x, 2, false) })
}

func TestExp(t *testing.T) {
	backend := New()
	out := backend.Exp(raw(t, []float64{0, 1, -1}, tensor.Shape{3}, tensor.Float64))

	assert.InDelta(t, 1.0, out.AsFloat64()[0], 1e-12)
	assert.InDelta(t, math.E, out.AsFloat64()[1], 1e-12)
	assert.InDelta(t, 1/math.E, out.AsFloat64()[2], 1e-12)

	assert.Panics(t, func() { backend.Exp(raw(t, []float64{1}, tensor.Shape{1}, tensor.Int32)) })
}
