package batch

import (
	"fmt"
	"strings"
)

// Encoder converts text to token ids. tokenizer.Tokenizer satisfies it.
type Encoder interface {
	Encode(text string) ([]int32, error)
}

// EncodeLines tokenises each non-blank line. Blank lines are skipped, so the
// result may be shorter than lines.
func EncodeLines(enc Encoder, lines []string) ([][]int32, error) {
	sequences := make([][]int32, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ids, err := enc.Encode(line)
		if err != nil {
			return nil, fmt.Errorf("encode line %d: %w", i+1, err)
		}
		sequences = append(sequences, ids)
	}
	return sequences, nil
}
