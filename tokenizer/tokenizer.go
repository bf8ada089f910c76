// Package tokenizer turns text into the target ids of an evaluation set.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPE: HuggingFace tokenizer.json files with a BPE model
//
// Example usage:
//
//	import "github.com/born-ml/perplexity/tokenizer"
//
//	tok, err := tokenizer.Open("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer

import (
	"github.com/born-ml/perplexity/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface.
type Tokenizer = tokenizer.Tokenizer

// Encoding names accepted by NewTikToken.
const (
	EncodingCL100kBase = tokenizer.EncodingCL100kBase
	EncodingP50kBase   = tokenizer.EncodingP50kBase
	EncodingR50kBase   = tokenizer.EncodingR50kBase
)

// ErrUnsupportedModel is returned for tokenizer.json files whose model is not BPE.
var ErrUnsupportedModel = tokenizer.ErrUnsupportedModel

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// LoadHuggingFace loads a BPE tokenizer from a tokenizer.json file or a
// model directory containing one.
func LoadHuggingFace(path string) (Tokenizer, error) {
	return tokenizer.LoadHuggingFace(path)
}

// Open resolves a tokenizer.json path, an encoding name, or a model name.
func Open(nameOrPath string) (Tokenizer, error) {
	return tokenizer.Open(nameOrPath)
}
