package batch

import (
	"errors"
	"strings"
	"testing"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name  string
		seqs  [][]int32
		opts  Options
		shape []int
		want  []int32
	}{
		{
			name:  "pad to longest",
			seqs:  [][]int32{{5, 6, 7}, {8}},
			shape: []int{2, 3},
			want:  []int32{5, 6, 7, 8, 0, 0},
		},
		{
			name:  "fixed seq len",
			seqs:  [][]int32{{5, 6}},
			opts:  Options{SeqLen: 4},
			shape: []int{1, 4},
			want:  []int32{5, 6, 0, 0},
		},
		{
			name:  "custom pad",
			seqs:  [][]int32{{0, 1}, {}},
			opts:  Options{PadID: -1},
			shape: []int{2, 2},
			want:  []int32{0, 1, -1, -1},
		},
		{
			name:  "truncate",
			seqs:  [][]int32{{1, 2, 3, 4}, {9}},
			opts:  Options{SeqLen: 2, Truncate: true},
			shape: []int{2, 2},
			want:  []int32{1, 2, 9, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pack(tt.seqs, tt.opts, cpu.New())
			require.NoError(t, err)
			assert.Equal(t, tt.shape, []int(got.Shape()))
			assert.Equal(t, tt.want, got.Data())
		})
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		name string
		seqs [][]int32
		opts Options
		want error
	}{
		{"no sequences", nil, Options{}, ErrEmptyBatch},
		{"all empty", [][]int32{{}, {}}, Options{}, ErrEmptyBatch},
		{"too long", [][]int32{{1, 2, 3}}, Options{SeqLen: 2}, ErrSequenceTooLong},
		{"pad collision", [][]int32{{1, 0, 2}}, Options{}, ErrPadCollision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pack(tt.seqs, tt.opts, cpu.New())
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Pack([][]int32{{1}}, Options{SeqLen: -1}, cpu.New())
	require.Error(t, err)
}

func TestLengths(t *testing.T) {
	packed, err := Pack([][]int32{{4, 5, 6}, {7}, {1, 2}}, Options{}, cpu.New())
	require.NoError(t, err)

	lengths, err := Lengths(packed, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, lengths)
}

type fakeEncoder struct {
	fail string
}

func (f fakeEncoder) Encode(text string) ([]int32, error) {
	if text == f.fail {
		return nil, errors.New("boom")
	}
	ids := make([]int32, 0, len(text))
	for _, word := range strings.Fields(text) {
		ids = append(ids, int32(len(word)))
	}
	return ids, nil
}

func TestEncodeLines(t *testing.T) {
	got, err := EncodeLines(fakeEncoder{}, []string{"a bb", "", "   ", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 2}, {3}}, got)
}

func TestEncodeLinesError(t *testing.T) {
	_, err := EncodeLines(fakeEncoder{fail: "bad"}, []string{"ok", "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
