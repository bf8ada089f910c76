package loader

import (
	"fmt"
	"strconv"

	"github.com/born-ml/perplexity/internal/tensor"
)

// Default tensor keys of an evaluation set.
const (
	DefaultPredictionsKey = "predictions"
	DefaultTargetsKey     = "targets"
)

// MetadataPadID is the metadata key recording the pad id used to pack the
// targets.
const MetadataPadID = "pad_id"

// EvalSet is a predictions/targets pair loaded from one file.
type EvalSet struct {
	Path        string
	Predictions *tensor.RawTensor
	Targets     *tensor.RawTensor
	Metadata    map[string]string
}

// PadID returns the pad id recorded in the file metadata, or fallback when
// the file does not record a valid one.
func (s *EvalSet) PadID(fallback int64) int64 {
	v, ok := s.Metadata[MetadataPadID]
	if !ok {
		return fallback
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return id
}

// LoadEvalSet reads the named predictions and targets tensors from path after
// verifying the data checksum, if the file carries one. Empty keys select
// DefaultPredictionsKey and DefaultTargetsKey.
func LoadEvalSet(path, predictionsKey, targetsKey string, backend tensor.Backend) (*EvalSet, error) {
	if predictionsKey == "" {
		predictionsKey = DefaultPredictionsKey
	}
	if targetsKey == "" {
		targetsKey = DefaultTargetsKey
	}

	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	if err := r.VerifyChecksum(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	predictions, err := r.LoadTensor(predictionsKey, backend)
	if err != nil {
		return nil, fmt.Errorf("%s: predictions: %w", path, err)
	}
	targets, err := r.LoadTensor(targetsKey, backend)
	if err != nil {
		return nil, fmt.Errorf("%s: targets: %w", path, err)
	}

	meta := make(map[string]string, len(r.Metadata()))
	for k, v := range r.Metadata() {
		meta[k] = v
	}
	return &EvalSet{Path: path, Predictions: predictions, Targets: targets, Metadata: meta}, nil
}
