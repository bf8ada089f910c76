package tokenizer

import (
	"strings"
)

// BPETokenizer implements Byte-Pair Encoding over a fixed vocabulary and an
// ordered merge list.
type BPETokenizer struct {
	name         string
	vocab        map[string]int32
	reverseVocab map[int32]string
	ranks        map[pair]int // merge -> priority (lower first)
	unkToken     int32
}

type pair struct {
	first  string
	second string
}

// NewBPETokenizer creates a tokenizer from vocab and merges. Symbols missing
// from vocab encode to unk, or are dropped when unk is negative.
func NewBPETokenizer(name string, vocab map[string]int32, merges []pair, unk int32) *BPETokenizer {
	reverseVocab := make(map[int32]string, len(vocab))
	for token, id := range vocab {
		reverseVocab[id] = token
	}
	ranks := make(map[pair]int, len(merges))
	for i, m := range merges {
		if _, dup := ranks[m]; !dup {
			ranks[m] = i
		}
	}

	return &BPETokenizer{
		name:         name,
		vocab:        vocab,
		reverseVocab: reverseVocab,
		ranks:        ranks,
		unkToken:     unk,
	}
}

// Encode splits text on whitespace and applies merges to each word.
func (b *BPETokenizer) Encode(text string) ([]int32, error) {
	tokens := []int32{}
	for _, word := range strings.Fields(text) {
		for _, sym := range b.merge(word) {
			if id, ok := b.vocab[sym]; ok {
				tokens = append(tokens, id)
			} else if b.unkToken >= 0 {
				tokens = append(tokens, b.unkToken)
			}
		}
	}
	return tokens, nil
}

// merge repeatedly joins the adjacent pair with the lowest rank.
func (b *BPETokenizer) merge(word string) []string {
	syms := make([]string, 0, len(word))
	for _, r := range word {
		syms = append(syms, string(r))
	}

	for len(syms) > 1 {
		best, bestRank := -1, len(b.ranks)
		for i := 0; i < len(syms)-1; i++ {
			if rank, ok := b.ranks[pair{syms[i], syms[i+1]}]; ok && rank < bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		syms[best] += syms[best+1]
		syms = append(syms[:best+1], syms[best+2:]...)
	}
	return syms
}

// Decode concatenates the vocabulary entries of tokens. Unknown ids decode
// to U+FFFD.
func (b *BPETokenizer) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		if text, ok := b.reverseVocab[tok]; ok {
			sb.WriteString(text)
		} else {
			sb.WriteRune('�')
		}
	}
	return sb.String(), nil
}

// VocabSize returns the number of vocabulary entries.
func (b *BPETokenizer) VocabSize() int {
	return len(b.vocab)
}

// Name returns the tokenizer name.
func (b *BPETokenizer) Name() string {
	return b.name
}
