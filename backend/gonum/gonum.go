// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gonum provides a backend built on gonum.org/v1/gonum.
//
// Elementwise products and reductions go through gonum/floats and the
// per-sequence sums through gonum/mat. Results are computed in float64 and
// converted back to the input dtype, so it doubles as a reference for the
// pure Go CPU backend.
//
//	backend := gonum.New()
//	res, err := perplexity.Compute(backend, predictions, targets, 0)
package gonum

import (
	internalgonum "github.com/born-ml/perplexity/internal/backend/gonum"
	"github.com/born-ml/perplexity/tensor"
)

// Backend is the gonum backend implementation.
type Backend = internalgonum.Backend

var _ tensor.Backend = (*Backend)(nil)

// New creates a gonum backend.
func New() *Backend {
	return internalgonum.New()
}
