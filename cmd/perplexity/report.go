package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/born-ml/perplexity/internal/perplexity"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// report is the outcome for one evaluation file.
type report struct {
	index int

	RunID   string `json:"run_id"`
	File    string `json:"file"`
	Backend string `json:"backend"`
	Method  string `json:"method"`
	PadID   int64  `json:"pad_id"`
	perplexity.Result
	Sequences []perplexity.SequenceResult `json:"sequences,omitempty"`
}

// writeReports prints reports as text blocks or as JSON lines.
func writeReports(w io.Writer, format string, reports []report) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeText(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, r report) error {
	_, err := fmt.Fprintf(w, "%s\n  backend:        %s (%s)\n  pad id:         %d\n  tokens:         %d\n  log perplexity: %.6f\n  perplexity:     %.6f\n",
		r.File, r.Backend, r.Method, r.PadID, r.TokenCount, r.LogPerplexity, r.Perplexity)
	if err != nil {
		return err
	}
	for _, s := range r.Sequences {
		if s.TokenCount == 0 {
			_, err = fmt.Fprintf(w, "  [%d] tokens=0\n", s.Index)
		} else {
			_, err = fmt.Fprintf(w, "  [%d] tokens=%d log_perplexity=%.6f perplexity=%.6f\n",
				s.Index, s.TokenCount, s.LogPerplexity, s.Perplexity)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
