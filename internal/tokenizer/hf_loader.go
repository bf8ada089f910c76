package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ErrUnsupportedModel is returned for tokenizer.json files whose model type
// is not BPE.
var ErrUnsupportedModel = errors.New("unsupported tokenizer model")

// hfTokenizerFile is the subset of tokenizer.json read by LoadHuggingFace.
type hfTokenizerFile struct {
	Model struct {
		Type     string           `json:"type"`
		Vocab    map[string]int32 `json:"vocab"`
		Merges   []string         `json:"merges"`
		UnkToken *string          `json:"unk_token"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
	} `json:"added_tokens"`
}

// LoadHuggingFace loads a BPE tokenizer from a tokenizer.json file or from a
// model directory containing one.
func LoadHuggingFace(path string) (*BPETokenizer, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "tokenizer.json")
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller.
	if err != nil {
		return nil, fmt.Errorf("read tokenizer.json: %w", err)
	}

	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Model.Type != "" && file.Model.Type != "BPE" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, file.Model.Type)
	}

	vocab := make(map[string]int32, len(file.Model.Vocab)+len(file.AddedTokens))
	for token, id := range file.Model.Vocab {
		vocab[token] = id
	}
	for _, added := range file.AddedTokens {
		vocab[added.Content] = added.ID
	}

	merges := make([]pair, 0, len(file.Model.Merges))
	for _, m := range file.Model.Merges {
		if parts := strings.Fields(m); len(parts) == 2 {
			merges = append(merges, pair{parts[0], parts[1]})
		}
	}

	unk := int32(-1)
	if file.Model.UnkToken != nil {
		if id, ok := vocab[*file.Model.UnkToken]; ok {
			unk = id
		}
	}

	return NewBPETokenizer(filepath.Base(filepath.Dir(path)), vocab, merges, unk), nil
}

// Open resolves nameOrPath to a tokenizer:
//  1. an existing file or directory is loaded as a HuggingFace tokenizer.json
//  2. a tiktoken encoding name (cl100k_base, p50k_base, r50k_base)
//  3. a model name known to tiktoken (gpt-4, gpt-3.5-turbo, ...)
func Open(nameOrPath string) (Tokenizer, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return LoadHuggingFace(nameOrPath)
	}

	switch nameOrPath {
	case EncodingCL100kBase, EncodingP50kBase, EncodingR50kBase:
		return NewTikToken(nameOrPath)
	}
	return NewTikTokenForModel(nameOrPath)
}
