// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the perplexity calculator.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 log-probabilities, int32 and int64 targets
//   - NumPy-compatible broadcasting for elementwise ops
//   - Gather and reductions split across cores
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
//	    res, err := perplexity.Compute(backend, predictions, targets, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Perplexity)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// allocates its own result and does not share mutable state.
package cpu
