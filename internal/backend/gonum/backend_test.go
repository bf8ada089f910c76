package gonum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/born-ml/perplexity/internal/tensor"
)

func raw(t *testing.T, values []float64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat64s(values, shape, dtype, tensor.CPU)
	require.NoError(t, err)
	return r
}

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

func TestBackendMetadata(t *testing.T) {
	backend := New()
	assert.Equal(t, "Gonum", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestMul(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)
	b := raw(t, []float64{2, 2, 2, 0, 0, 0}, tensor.Shape{2, 3}, tensor.Float64)

	assert.Equal(t, []float64{2, 4, 6, 0, 0, 0}, backend.Mul(a, b).AsFloat64())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.AsFloat64())

	col := raw(t, []float64{1, -1}, tensor.Shape{2, 1}, tensor.Float64)
	assert.Equal(t, []float64{1, 2, 3, -4, -5, -6}, backend.Mul(a, col).AsFloat64())
}

func TestGatherAlongEachDim(t *testing.T) {
	backend := New()
	x := raw(t, []float64{
		0, 1, 2,
		10, 11, 12,
	}, tensor.Shape{2, 3}, tensor.Float32)

	last := backend.Gather(x, 1, raw(t, []float64{2, 0}, tensor.Shape{2, 1}, tensor.Int32))
	assert.Equal(t, []float32{2, 10}, last.AsFloat32())

	first := backend.Gather(x, 0, raw(t, []float64{1, 0, 1}, tensor.Shape{1, 3}, tensor.Int32))
	assert.Equal(t, []float32{10, 1, 12}, first.AsFloat32())

	assert.Panics(t, func() {
		backend.Gather(x, 1, raw(t, []float64{3, 0}, tensor.Shape{2, 1}, tensor.Int32))
	})
}

func TestSumDimAndSum(t *testing.T) {
	backend := New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}, tensor.Float64)

	assert.Equal(t, []float64{3, 7, 11, 15}, backend.SumDim(x, -1, false).AsFloat64())
	assert.Equal(t, []float64{4, 6, 12, 14}, backend.SumDim(x, 1, false).AsFloat64())
	assert.Equal(t, tensor.Shape{1, 2, 2}, backend.SumDim(x, 0, true).Shape())
	assert.Equal(t, 36.0, backend.Sum(x).AsFloat64()[0])
}

func TestExpAndCast(t *testing.T) {
	backend := New()
	out := backend.Exp(raw(t, []float64{0, 1}, tensor.Shape{2}, tensor.Float32))
	assert.InDelta(t, 1.0, float64(out.AsFloat32()[0]), 1e-6)
	assert.InDelta(t, math.E, float64(out.AsFloat32()[1]), 1e-6)

	mask := backend.NotEqual(raw(t, []float64{4, 0, 1}, tensor.Shape{3}, tensor.Int64),
		raw(t, []float64{0}, tensor.Shape{}, tensor.Int64))
	assert.Equal(t, []bool{true, false, true}, mask.AsBool())
	assert.Equal(t, []float64{1, 0, 1}, backend.Cast(mask, tensor.Float64).AsFloat64())
}

// TestMatchesCPU runs the same primitive pipeline on both backends.
func TestMatchesCPU(t *testing.T) {
	const b, s, v = 3, 5, 7
	values := make([]float64, b*s*v)
	for i := range values {
		values[i] = -float64(i%11) * 0.37
	}
	ids := make([]float64, b*s)
	for i := range ids {
		ids[i] = float64((i * 5) % v)
	}

	backends := []tensor.Backend{cpu.New(), New()}
	var results [][]float64
	for _, be := range backends {
		x := raw(t, values, tensor.Shape{b, s, v}, tensor.Float64)
		idx := raw(t, ids, tensor.Shape{b, s}, tensor.Int32)

		picked := be.Squeeze(be.Gather(x, 2, be.Unsqueeze(idx, 2)), 2)
		mask := be.Cast(be.NotEqual(idx, raw(t, []float64{0}, tensor.Shape{}, tensor.Int32)), tensor.Float64)
		rows := be.SumDim(be.Mul(picked, mask), 1, false)
		results = append(results, append(rows.AsFloat64(), be.Sum(mask).AsFloat64()[0]))
	}

	assert.InDeltaSlice(t, results[0], results[1], 1e-12)
}
