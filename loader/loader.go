// Package loader reads evaluation sets stored as SafeTensors files.
//
// An evaluation set holds a float log-probabilities tensor of shape
// (batch, seq_len, vocab) and an integer targets tensor of shape
// (batch, seq_len). The file metadata may carry the pad id and a SHA-256
// of the data section, which LoadEvalSet verifies.
//
// Example:
//
//	set, err := loader.LoadEvalSet("eval.safetensors", "", "", cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := perplexity.Compute(backend, set.Predictions, set.Targets, set.PadID(0))
package loader

import (
	"github.com/born-ml/perplexity/internal/loader"
	"github.com/born-ml/perplexity/tensor"
)

// Tensor names and metadata keys used by evaluation sets.
const (
	DefaultPredictionsKey = loader.DefaultPredictionsKey
	DefaultTargetsKey     = loader.DefaultTargetsKey
	MetadataPadID         = loader.MetadataPadID
)

// ErrTensorNotFound is returned when a requested tensor is not in the file.
var ErrTensorNotFound = loader.ErrTensorNotFound

// EvalSet is a loaded evaluation set.
type EvalSet = loader.EvalSet

// SafeTensorsReader reads SafeTensors files.
type SafeTensorsReader = loader.SafeTensorsReader

// SafeTensorInfo describes a tensor in the SafeTensors header.
type SafeTensorInfo = loader.SafeTensorInfo

// LoadEvalSet loads the predictions and targets tensors from path.
// Empty keys select DefaultPredictionsKey and DefaultTargetsKey.
func LoadEvalSet(path, predictionsKey, targetsKey string, backend tensor.Backend) (*EvalSet, error) {
	return loader.LoadEvalSet(path, predictionsKey, targetsKey, backend)
}

// NewSafeTensorsReader opens and validates a SafeTensors file.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return loader.NewSafeTensorsReader(path)
}
