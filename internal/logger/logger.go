// Package logger builds the zerolog logger used by the CLI and carries it
// through a context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Output formats accepted by New.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

type loggerKey struct{}

// New creates a logger writing to w at level. format is FormatJSON or
// FormatPretty (zerolog ConsoleWriter, colored only on a terminal).
func New(w io.Writer, level zerolog.Level, format string) (zerolog.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
	case FormatPretty, "text", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (expected json or pretty)", format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Default returns an info-level JSON logger on stderr.
func Default() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to
// info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithContext adds the logger to the context.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext retrieves the logger from the context, or Default if none was
// stored.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return l
	}
	return Default()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
