// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the tensor types the perplexity calculator works on.
//
// # Overview
//
// A RawTensor owns a contiguous row-major buffer with a Shape and DataType.
// Tensor[T, B] adds element typing and binds the tensor to a Backend, which
// performs every computation:
//   - backend/cpu: pure Go, parallel gather
//   - backend/gonum: gonum floats and mat
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perplexity/backend/cpu"
//	    "github.com/born-ml/perplexity/tensor"
//	)
//
//	func main() {
//	    b := cpu.New()
//	    targets, err := tensor.FromSlice([]int32{5, 9, 0}, tensor.Shape{1, 3}, b)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(targets.Shape()) // [1 3]
//	}
//
// Predictions usually arrive as float64 slices from a model runtime:
//
//	pred, err := tensor.FromFloat64s(logProbs, tensor.Shape{batch, seq, vocab}, tensor.Float32, tensor.CPU)
package tensor
