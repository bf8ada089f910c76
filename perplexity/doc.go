// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package perplexity computes the perplexity of a padded batch of sequences.
//
// # Overview
//
// Given log-probabilities of shape (batch, seq_len, vocab) and integer
// targets of shape (batch, seq_len), the calculator selects the
// log-probability of each target class, drops positions where the target
// equals the pad id, and returns
//
//	log_perplexity = -(sum of selected log-probs) / (number of non-pad positions)
//	perplexity     = exp(log_perplexity)
//
// Two extraction methods are available and agree up to floating-point
// rounding:
//   - MethodGather: index the vocabulary axis directly
//   - MethodOneHot: multiply by a one-hot encoding and sum
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perplexity/backend/cpu"
//	    "github.com/born-ml/perplexity/perplexity"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    calc := perplexity.NewCalculator(backend, perplexity.WithPadID(0))
//	    res, err := calc.Compute(predictions, targets)
//	    if errors.Is(err, perplexity.ErrDivisionByZero) {
//	        // every position was padding
//	    }
//	    fmt.Println(res.LogPerplexity, res.Perplexity)
//	}
//
// # Errors
//
// Malformed input is reported through wrapped sentinel errors:
//   - ErrShapeMismatch: rank or leading dimensions disagree
//   - ErrIndexOutOfRange: a non-pad target is outside [0, vocab)
//   - ErrDivisionByZero: no non-pad positions
//   - ErrUnsupportedDType: integer predictions or float targets
package perplexity
