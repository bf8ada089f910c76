package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/born-ml/perplexity/internal/serialization"
	"github.com/born-ml/perplexity/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvalSet(t *testing.T, metadata map[string]string) string {
	t.Helper()
	pred, err := tensor.FromFloat64s([]float64{-1, -2, -3, -4, -5, -6}, tensor.Shape{1, 2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	targets, err := tensor.FromFloat64s([]float64{2, 0}, tensor.Shape{1, 2}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "eval.safetensors")
	require.NoError(t, serialization.WriteSafeTensors(path, map[string]*tensor.RawTensor{
		DefaultPredictionsKey: pred,
		DefaultTargetsKey:     targets,
	}, metadata))
	return path
}

func TestLoadEvalSet(t *testing.T) {
	path := writeEvalSet(t, map[string]string{MetadataPadID: "0", "model": "tiny"})

	set, err := LoadEvalSet(path, DefaultPredictionsKey, DefaultTargetsKey, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, path, set.Path)
	assert.Equal(t, tensor.Shape{1, 2, 3}, set.Predictions.Shape())
	assert.Equal(t, tensor.Float32, set.Predictions.DType())
	assert.Equal(t, []float32{-1, -2, -3, -4, -5, -6}, set.Predictions.AsFloat32())
	assert.Equal(t, []int64{2, 0}, set.Targets.AsInt64())
	assert.Equal(t, "tiny", set.Metadata["model"])
	assert.NotEmpty(t, set.Metadata[serialization.MetadataChecksum])
}

func TestLoadEvalSet_MissingKey(t *testing.T) {
	path := writeEvalSet(t, nil)

	_, err := LoadEvalSet(path, "logits", DefaultTargetsKey, cpu.New())
	require.ErrorIs(t, err, ErrTensorNotFound)

	_, err = LoadEvalSet(path, DefaultPredictionsKey, "labels", cpu.New())
	require.ErrorIs(t, err, ErrTensorNotFound)
}

func TestLoadEvalSet_Corrupted(t *testing.T) {
	path := writeEvalSet(t, nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = LoadEvalSet(path, DefaultPredictionsKey, DefaultTargetsKey, cpu.New())
	require.ErrorIs(t, err, serialization.ErrChecksumMismatch)
}

func TestEvalSetPadID(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     int64
	}{
		{"recorded", map[string]string{MetadataPadID: "-100"}, -100},
		{"absent", nil, 7},
		{"garbage", map[string]string{MetadataPadID: "pad"}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := &EvalSet{Metadata: tt.metadata}
			assert.Equal(t, tt.want, set.PadID(7))
		})
	}
}
