// Package tokenizer turns evaluation text into token ids.
//
// Two implementations are provided:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPE: merges and vocabulary loaded from a HuggingFace tokenizer.json
//
// Open picks one from a name or path:
//
//	tok, err := tokenizer.Open("cl100k_base")
//	if err != nil {
//	    return err
//	}
//	ids, err := tok.Encode("Hello, world!")
package tokenizer
