package perplexity

import (
	"fmt"
	"math"

	"github.com/born-ml/perplexity/internal/tensor"
)

// validate checks shapes, dtypes and target ranges, and returns the int32
// gather index for targets. Pad positions map to class 0 so that a pad id
// outside [0, V) never reaches the backend.
func (c *Calculator[B]) validate(predictions, targets *tensor.RawTensor) (*tensor.RawTensor, error) {
	if predictions == nil || targets == nil {
		return nil, fmt.Errorf("%w: nil input", ErrShapeMismatch)
	}

	ps, ts := predictions.Shape(), targets.Shape()
	if len(ps) != 3 {
		return nil, fmt.Errorf("%w: predictions must be [batch, seq, vocab], got %v", ErrShapeMismatch, ps)
	}
	if len(ts) != 2 {
		return nil, fmt.Errorf("%w: targets must be [batch, seq], got %v", ErrShapeMismatch, ts)
	}
	if ps[0] != ts[0] || ps[1] != ts[1] {
		return nil, fmt.Errorf("%w: predictions %v vs targets %v", ErrShapeMismatch, ps, ts)
	}

	if !predictions.DType().IsFloat() {
		return nil, fmt.Errorf("%w: predictions must be float32 or float64, got %s", ErrUnsupportedDType, predictions.DType())
	}

	var ids []int64
	switch targets.DType() {
	case tensor.Int32:
		if c.padID < math.MinInt32 || c.padID > math.MaxInt32 {
			return nil, fmt.Errorf("%w: pad id %d does not fit int32 targets", ErrUnsupportedDType, c.padID)
		}
		src := targets.AsInt32()
		ids = make([]int64, len(src))
		for i, v := range src {
			ids[i] = int64(v)
		}
	case tensor.Int64:
		ids = targets.AsInt64()
	default:
		return nil, fmt.Errorf("%w: targets must be int32 or int64, got %s", ErrUnsupportedDType, targets.DType())
	}

	seq, vocab := ts[1], int64(ps[2])
	index, err := tensor.NewRaw(ts.Clone(), tensor.Int32, c.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("gather index: %w", err)
	}
	dst := index.AsInt32()
	for i, id := range ids {
		if id == c.padID {
			continue
		}
		if id < 0 || id >= vocab {
			return nil, fmt.Errorf("%w: targets[%d, %d] = %d, vocab size %d", ErrIndexOutOfRange, i/seq, i%seq, id, vocab)
		}
		dst[i] = int32(id)
	}
	return index, nil
}
