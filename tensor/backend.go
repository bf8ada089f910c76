// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/perplexity/internal/tensor"

// Backend defines the primitives a compute backend must implement for the
// perplexity calculator: Mul, Equal, NotEqual, Gather, Unsqueeze, Squeeze,
// Cast, Sum, SumDim and Exp.
//
// Implementations:
//   - backend/cpu: pure Go
//   - backend/gonum: gonum.org/v1/gonum
type Backend = tensor.Backend
