// Package batch packs variable-length token sequences into the right-padded
// [batch, seq] targets tensor the perplexity calculator consumes.
package batch

import (
	"errors"
	"fmt"

	"github.com/born-ml/perplexity/internal/tensor"
)

var (
	// ErrEmptyBatch is returned when there is nothing to pack.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrSequenceTooLong is returned when a sequence exceeds Options.SeqLen
	// and truncation is disabled.
	ErrSequenceTooLong = errors.New("sequence longer than seq len")
	// ErrPadCollision is returned when a real token equals the pad id.
	ErrPadCollision = errors.New("token collides with pad id")
)

// Options controls packing.
type Options struct {
	PadID    int32
	SeqLen   int  // 0 pads to the longest sequence
	Truncate bool // cut long sequences instead of failing
}

// Pack right-pads sequences with opts.PadID into a [len(sequences), seq]
// int32 tensor.
func Pack[B tensor.Backend](sequences [][]int32, opts Options, b B) (*tensor.Tensor[int32, B], error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("%w: no sequences", ErrEmptyBatch)
	}
	if opts.SeqLen < 0 {
		return nil, fmt.Errorf("batch: negative seq len %d", opts.SeqLen)
	}

	seq := opts.SeqLen
	if seq == 0 {
		for _, s := range sequences {
			seq = max(seq, len(s))
		}
		if seq == 0 {
			return nil, fmt.Errorf("%w: every sequence is empty", ErrEmptyBatch)
		}
	}

	data := make([]int32, len(sequences)*seq)
	for i := range data {
		data[i] = opts.PadID
	}
	for row, s := range sequences {
		if len(s) > seq {
			if !opts.Truncate {
				return nil, fmt.Errorf("%w: sequence %d has %d tokens, seq len %d", ErrSequenceTooLong, row, len(s), seq)
			}
			s = s[:seq]
		}
		for col, id := range s {
			if id == opts.PadID {
				return nil, fmt.Errorf("%w: sequence %d position %d holds %d", ErrPadCollision, row, col, id)
			}
		}
		copy(data[row*seq:], s)
	}

	return tensor.FromSlice(data, tensor.Shape{len(sequences), seq}, b)
}

// Lengths returns the number of non-pad tokens in each row of a [batch, seq]
// targets tensor.
func Lengths[B tensor.Backend](targets *tensor.Tensor[int32, B], padID int32) ([]int, error) {
	shape := targets.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("batch: targets must be [batch, seq], got %v", shape)
	}

	data := targets.Data()
	lengths := make([]int, shape[0])
	for row := range lengths {
		for _, id := range data[row*shape[1] : (row+1)*shape[1]] {
			if id != padID {
				lengths[row]++
			}
		}
	}
	return lengths, nil
}
