// Package perplexity computes language-model perplexity over a right-padded
// batch of token-level log-probabilities.
//
// Mathematical Formulation:
//
//	selected[b,t] = predictions[b, t, targets[b,t]]
//	mask[b,t]     = 1 if targets[b,t] != pad else 0
//	log_ppl       = -Σ(selected·mask) / Σ mask
//	ppl           = exp(log_ppl)
//
// Every step runs on a tensor.Backend, so the same inputs can be evaluated on
// any backend and with either extraction Method.
//
// Usage:
//
//	calc := perplexity.NewCalculator(cpu.New(), perplexity.WithPadID(0))
//	res, err := calc.Compute(predictions, targets) // [B, T, V], [B, T]
package perplexity

import (
	"fmt"
	"math"

	"github.com/born-ml/perplexity/internal/tensor"
)

// DefaultPadID is the reserved target id marking padded positions.
const DefaultPadID int64 = 0

// Result summarises a whole batch.
type Result struct {
	LogPerplexity float64 `json:"log_perplexity"`
	Perplexity    float64 `json:"perplexity"`
	TotalLogProb  float64 `json:"total_log_prob"` // Σ selected·mask
	TokenCount    int     `json:"token_count"`    // Σ mask
}

// String formats the result for logs and CLI output.
func (r Result) String() string {
	return fmt.Sprintf("perplexity=%.6f log_perplexity=%.6f tokens=%d", r.Perplexity, r.LogPerplexity, r.TokenCount)
}

// SequenceResult is the breakdown for one row of the batch. Rows made only
// of padding have TokenCount 0 and zero metrics.
type SequenceResult struct {
	Index         int     `json:"index"`
	TokenCount    int     `json:"token_count"`
	TotalLogProb  float64 `json:"total_log_prob"`
	LogPerplexity float64 `json:"log_perplexity"`
	Perplexity    float64 `json:"perplexity"`
}

type config struct {
	padID  int64
	method Method
}

// Option configures a Calculator.
type Option func(*config)

// WithPadID sets the target id treated as padding.
func WithPadID(id int64) Option {
	return func(c *config) { c.padID = id }
}

// WithMethod selects the true-class extraction method.
func WithMethod(m Method) Option {
	return func(c *config) { c.method = m }
}

// Calculator evaluates perplexity on backend B.
type Calculator[B tensor.Backend] struct {
	backend B
	padID   int64
	method  Method
}

// NewCalculator creates a Calculator. Defaults: DefaultPadID, MethodGather.
func NewCalculator[B tensor.Backend](backend B, opts ...Option) *Calculator[B] {
	cfg := config{padID: DefaultPadID, method: MethodGather}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Calculator[B]{
		backend: backend,
		padID:   cfg.padID,
		method:  cfg.method,
	}
}

// Compute is shorthand for NewCalculator(backend, WithPadID(padID)).Compute.
func Compute[B tensor.Backend](backend B, predictions, targets *tensor.RawTensor, padID int64) (Result, error) {
	return NewCalculator(backend, WithPadID(padID)).Compute(predictions, targets)
}

// Backend returns the calculator's backend.
func (c *Calculator[B]) Backend() B {
	return c.backend
}

// PadID returns the configured padding id.
func (c *Calculator[B]) PadID() int64 {
	return c.padID
}

// Method returns the configured extraction method.
func (c *Calculator[B]) Method() Method {
	return c.method
}

// Compute returns the perplexity of the whole batch.
//
// Parameters:
//   - predictions: log-probabilities with shape [B, T, V], float32 or float64
//   - targets: token ids with shape [B, T], int32 or int64; pad positions hold the pad id
//
// Errors wrap ErrShapeMismatch, ErrUnsupportedDType, ErrIndexOutOfRange or
// ErrDivisionByZero. No partial result is returned on failure.
//
// Sums are accumulated in float64 and token counts in int64. A pad id outside
// [0, V) is allowed; only non-pad targets are range checked. The gonum
// backend compares ids as float64, so with it ids are exact only up to 2^53.
func (c *Calculator[B]) Compute(predictions, targets *tensor.RawTensor) (Result, error) {
	masked, mask, err := c.maskedLogProbs(predictions, targets)
	if err != nil {
		return Result{}, err
	}

	total := c.backend.Sum(c.backend.Cast(masked, tensor.Float64)).ScalarFloat64()
	count := c.backend.Sum(c.backend.Cast(mask, tensor.Int64)).ScalarFloat64()
	if count == 0 {
		return Result{}, fmt.Errorf("%w: every position equals pad id %d", ErrDivisionByZero, c.padID)
	}

	logPPL := -(total / count)
	return Result{
		LogPerplexity: logPPL,
		Perplexity:    c.exp([]float64{logPPL})[0],
		TotalLogProb:  total,
		TokenCount:    int(math.Round(count)),
	}, nil
}

// ComputePerSequence returns one SequenceResult per batch row. It fails with
// ErrDivisionByZero only when the entire batch is padding.
func (c *Calculator[B]) ComputePerSequence(predictions, targets *tensor.RawTensor) ([]SequenceResult, error) {
	masked, mask, err := c.maskedLogProbs(predictions, targets)
	if err != nil {
		return nil, err
	}
	counts := c.backend.SumDim(c.backend.Cast(mask, tensor.Int64), 1, false).Float64s()
	var count float64
	for _, n := range counts {
		count += n
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: every position equals pad id %d", ErrDivisionByZero, c.padID)
	}
	totals := c.backend.SumDim(c.backend.Cast(masked, tensor.Float64), 1, false).Float64s()

	logPPLs := make([]float64, len(totals))
	for i := range totals {
		if counts[i] > 0 {
			logPPLs[i] = -(totals[i] / counts[i])
		}
	}
	ppls := c.exp(logPPLs)

	results := make([]SequenceResult, len(totals))
	for i := range results {
		results[i] = SequenceResult{Index: i, TokenCount: int(math.Round(counts[i]))}
		if counts[i] == 0 {
			continue
		}
		results[i].TotalLogProb = totals[i]
		results[i].LogPerplexity = logPPLs[i]
		results[i].Perplexity = ppls[i]
	}
	return results, nil
}

// maskedLogProbs returns selected·mask and the mask itself, both [B, T] in
// the predictions dtype.
func (c *Calculator[B]) maskedLogProbs(predictions, targets *tensor.RawTensor) (masked, mask *tensor.RawTensor, err error) {
	index, err := c.validate(predictions, targets)
	if err != nil {
		return nil, nil, err
	}

	selected, err := c.selectTrueClass(predictions, index)
	if err != nil {
		return nil, nil, err
	}

	pad, err := c.padScalar(targets.DType())
	if err != nil {
		return nil, nil, err
	}
	mask = c.backend.Cast(c.backend.NotEqual(targets, pad), predictions.DType())
	masked = c.backend.Mul(selected, mask)
	return masked, mask, nil
}

// selectTrueClass extracts predictions[b, t, index[b, t]] as a [B, T] tensor.
func (c *Calculator[B]) selectTrueClass(predictions, index *tensor.RawTensor) (*tensor.RawTensor, error) {
	be := c.backend
	idx := be.Unsqueeze(index, 2) // [B, T, 1]

	switch c.method {
	case MethodGather:
		return be.Squeeze(be.Gather(predictions, 2, idx), 2), nil
	case MethodOneHot:
		classes, err := tensor.Arange[int32](predictions.Shape()[2], be)
		if err != nil {
			return nil, fmt.Errorf("one-hot classes: %w", err)
		}
		onehot := be.Cast(be.Equal(idx, classes.Raw()), predictions.DType()) // [B, T, V]
		return be.SumDim(be.Mul(predictions, onehot), 2, false), nil
	default:
		return nil, fmt.Errorf("unknown method %v", c.method)
	}
}

// padScalar returns the pad id as a scalar of the targets dtype. validate has
// already checked that it fits.
func (c *Calculator[B]) padScalar(dtype tensor.DataType) (*tensor.RawTensor, error) {
	if dtype == tensor.Int32 {
		t, err := tensor.FromSlice([]int32{int32(c.padID)}, tensor.Shape{}, c.backend) //nolint:gosec // G115: range checked in validate.
		if err != nil {
			return nil, fmt.Errorf("pad scalar: %w", err)
		}
		return t.Raw(), nil
	}
	t, err := tensor.FromSlice([]int64{c.padID}, tensor.Shape{}, c.backend)
	if err != nil {
		return nil, fmt.Errorf("pad scalar: %w", err)
	}
	return t.Raw(), nil
}

func (c *Calculator[B]) exp(values []float64) []float64 {
	raw, err := tensor.FromFloat64s(values, tensor.Shape{len(values)}, tensor.Float64, c.backend.Device())
	if err != nil {
		panic(fmt.Sprintf("perplexity: %v", err))
	}
	return c.backend.Exp(raw).AsFloat64()
}
