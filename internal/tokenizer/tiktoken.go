package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding used by GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding used by GPT-3 and Codex.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the encoding used by older GPT-3 models.
	EncodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	vocab    int
}

// NewTikToken loads a tiktoken encoding by name. The BPE ranks are fetched
// on first use and cached by tiktoken-go (TIKTOKEN_CACHE_DIR).
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName, vocab: vocabSize(encodingName)}, nil
}

// NewTikTokenForModel loads the encoding registered for a model name such as
// "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken for model %q: %w", modelName, err)
	}
	return &TikToken{encoding: encoding, name: modelName, vocab: vocabSize(modelName)}, nil
}

func vocabSize(name string) int {
	// tiktoken-go does not expose the rank table size; these include the
	// <|endoftext|> and FIM special tokens.
	switch name {
	case EncodingCL100kBase, "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002":
		return 100277
	case EncodingP50kBase, EncodingR50kBase:
		return 50281
	default:
		return 100277
	}
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: vocab size < 2^31.
	}
	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = int(tok)
	}
	return t.encoding.Decode(ids), nil
}

// VocabSize returns the vocabulary size including special tokens.
func (t *TikToken) VocabSize() int {
	return t.vocab
}

// Name returns the encoding or model name.
func (t *TikToken) Name() string {
	return t.name
}
