package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/born-ml/perplexity/internal/loader"
	"github.com/born-ml/perplexity/internal/serialization"
	"github.com/born-ml/perplexity/internal/tensor"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	full := append([]string{"perplexity", "--config", cfg, "--log-level", "off"}, args...)
	err := newApp(&stdout, &stderr).Run(context.Background(), full)
	return stdout.String(), stderr.String(), err
}

func runWithConfig(t *testing.T, configBody string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configBody), 0o600))

	var stdout, stderr bytes.Buffer
	full := append([]string{"perplexity", "--config", path, "--log-level", "off"}, args...)
	err := newApp(&stdout, &stderr).Run(context.Background(), full)
	return stdout.String(), err
}

// writeEval writes predictions [1, 3, 4] whose true-class log-probs are -1
// and -2, with targets [2, 3, pad].
func writeEval(t *testing.T, pad int64, metadata map[string]string) string {
	t.Helper()
	values := make([]float64, 12)
	for i := range values {
		values[i] = -5
	}
	values[0*4+2] = -1
	values[1*4+3] = -2
	pred, err := tensor.FromFloat64s(values, tensor.Shape{1, 3, 4}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	targets, err := tensor.FromFloat64s([]float64{2, 3, float64(pad)}, tensor.Shape{1, 3}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "eval.safetensors")
	require.NoError(t, serialization.WriteSafeTensors(path, map[string]*tensor.RawTensor{
		loader.DefaultPredictionsKey: pred,
		loader.DefaultTargetsKey:     targets,
	}, metadata))
	return path
}

func decodeReports(t *testing.T, out string) []map[string]any {
	t.Helper()
	var reports []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var r map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &r), line)
		reports = append(reports, r)
	}
	return reports
}

func TestComputeJSON(t *testing.T) {
	path := writeEval(t, 0, nil)

	for _, args := range [][]string{
		{"--backend", "cpu", "--method", "gather"},
		{"--backend", "gonum", "--method", "onehot"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, _, err := run(t, append(append([]string{"compute", "--format", "json"}, args...), path)...)
			require.NoError(t, err)

			reports := decodeReports(t, out)
			require.Len(t, reports, 1)
			r := reports[0]
			assert.Equal(t, path, r["file"])
			assert.Equal(t, float64(2), r["token_count"])
			assert.InDelta(t, 1.5, r["log_perplexity"], 1e-9)
			assert.InDelta(t, 4.481689, r["perplexity"], 1e-6)
			assert.NotEmpty(t, r["run_id"])
			assert.NotContains(t, r, "sequences")
		})
	}
}

func TestComputeMultipleFiles(t *testing.T) {
	a := writeEval(t, 0, nil)
	b := writeEval(t, 0, nil)

	out, _, err := run(t, "compute", "--format", "json", "--workers", "2", "--per-sequence", a, b)
	require.NoError(t, err)

	reports := decodeReports(t, out)
	require.Len(t, reports, 2)
	assert.Equal(t, a, reports[0]["file"])
	assert.Equal(t, b, reports[1]["file"])
	assert.Equal(t, reports[0]["run_id"], reports[1]["run_id"])
	assert.Len(t, reports[0]["sequences"], 1)
}

func TestComputeText(t *testing.T) {
	out, _, err := run(t, "compute", "--per-sequence", writeEval(t, 0, nil))
	require.NoError(t, err)

	assert.Contains(t, out, "backend:        CPU (gather)")
	assert.Contains(t, out, "tokens:         2")
	assert.Contains(t, out, "perplexity:     4.481689")
	assert.Contains(t, out, "[0] tokens=2 log_perplexity=1.500000")
}

func TestComputePadIDFromMetadata(t *testing.T) {
	// Targets pad with -1 and record it; 0 is not used as a target.
	path := writeEval(t, -1, map[string]string{loader.MetadataPadID: "-1"})

	out, _, err := run(t, "compute", "--format", "json", path)
	require.NoError(t, err)
	r := decodeReports(t, out)[0]
	assert.Equal(t, float64(-1), r["pad_id"])
	assert.Equal(t, float64(2), r["token_count"])

	// An explicit flag overrides the file.
	_, _, err = run(t, "compute", "--pad-id", "0", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestComputeConfigDefaults(t *testing.T) {
	path := writeEval(t, 0, nil)

	out, err := runWithConfig(t, "backend: gonum\nmethod: onehot\nformat: json\n", "compute", path)
	require.NoError(t, err)
	r := decodeReports(t, out)[0]
	assert.Equal(t, "Gonum", r["backend"])
	assert.Equal(t, "onehot", r["method"])

	// Flags win over the config file.
	out, err = runWithConfig(t, "backend: gonum\nformat: json\n", "compute", "--backend", "cpu", path)
	require.NoError(t, err)
	assert.Equal(t, "CPU", decodeReports(t, out)[0]["backend"])
}

func TestComputeErrors(t *testing.T) {
	path := writeEval(t, 0, nil)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", []string{"compute"}, "at least one"},
		{"bad backend", []string{"compute", "--backend", "webgpu", path}, "unknown backend"},
		{"bad method", []string{"compute", "--method", "scatter", path}, "unknown method"},
		{"bad format", []string{"compute", "--format", "xml", path}, "unknown format"},
		{"bad workers", []string{"compute", "--workers", "0", path}, "--workers"},
		{"missing file", []string{"compute", filepath.Join(t.TempDir(), "nope.safetensors")}, "no such file"},
		{"missing key", []string{"compute", "--targets-key", "labels", path}, "tensor not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMalformedConfig(t *testing.T) {
	_, err := runWithConfig(t, "backend: [", "version")
	require.Error(t, err)
}

const tinyTokenizer = `{"model": {"type": "BPE", "vocab": {"h": 1, "e": 2, "l": 3, "o": 4, "he": 5, "ll": 6}, "merges": ["h e", "l l"]}}`

func TestPack(t *testing.T) {
	dir := t.TempDir()
	tokPath := filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(tokPath, []byte(tinyTokenizer), 0o600))
	input := filepath.Join(dir, "eval.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello\n\nhe\n"), 0o600))
	output := filepath.Join(dir, "targets.safetensors")

	out, _, err := run(t, "pack", "--tokenizer", tokPath, "--input", input, "--output", output, "--pad-id", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "targets [2 3] (4 tokens)")

	r, err := loader.NewSafeTensorsReader(output)
	require.NoError(t, err)
	defer r.Close()

	targets, err := r.LoadTensor(loader.DefaultTargetsKey, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 6, 4, 5, 0, 0}, targets.AsInt32())
	assert.Equal(t, "0", r.Metadata()[loader.MetadataPadID])
	assert.NoError(t, r.VerifyChecksum())
}

func TestPackPadCollision(t *testing.T) {
	dir := t.TempDir()
	tokPath := filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(tokPath, []byte(tinyTokenizer), 0o600))
	input := filepath.Join(dir, "eval.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello\n"), 0o600))

	_, _, err := run(t, "pack", "--tokenizer", tokPath, "--input", input, "--output", filepath.Join(dir, "o.safetensors"), "--pad-id", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "perplexity v")
	assert.Contains(t, out, "cpu, gonum")
}
