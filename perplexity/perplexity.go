// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package perplexity

import (
	"github.com/born-ml/perplexity/internal/perplexity"
	"github.com/born-ml/perplexity/tensor"
)

// DefaultPadID is the pad id used when WithPadID is not given.
const DefaultPadID = perplexity.DefaultPadID

// Errors returned for invalid input. Use errors.Is to match them.
var (
	ErrShapeMismatch    = perplexity.ErrShapeMismatch
	ErrIndexOutOfRange  = perplexity.ErrIndexOutOfRange
	ErrDivisionByZero   = perplexity.ErrDivisionByZero
	ErrUnsupportedDType = perplexity.ErrUnsupportedDType
)

// Method selects how the true-class log-probability is extracted.
type Method = perplexity.Method

// Extraction methods.
const (
	MethodGather = perplexity.MethodGather
	MethodOneHot = perplexity.MethodOneHot
)

// Result holds the batch log-perplexity and perplexity.
type Result = perplexity.Result

// SequenceResult holds the perplexity of one row of the batch.
type SequenceResult = perplexity.SequenceResult

// Option configures a Calculator.
type Option = perplexity.Option

// Calculator computes perplexity on backend B.
type Calculator[B tensor.Backend] = perplexity.Calculator[B]

// WithPadID sets the target id that marks padding.
func WithPadID(id int64) Option {
	return perplexity.WithPadID(id)
}

// WithMethod sets the extraction method.
func WithMethod(m Method) Option {
	return perplexity.WithMethod(m)
}

// ParseMethod parses "gather" or "onehot".
func ParseMethod(s string) (Method, error) {
	return perplexity.ParseMethod(s)
}

// NewCalculator creates a Calculator bound to backend.
func NewCalculator[B tensor.Backend](backend B, opts ...Option) *Calculator[B] {
	return perplexity.NewCalculator(backend, opts...)
}

// Compute is a shortcut for NewCalculator(backend, WithPadID(padID)).Compute.
func Compute[B tensor.Backend](backend B, predictions, targets *tensor.RawTensor, padID int64) (Result, error) {
	return perplexity.Compute(backend, predictions, targets, padID)
}
