package main

import (
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/backend"
	"github.com/born-ml/perplexity/internal/config"
	"github.com/born-ml/perplexity/internal/loader"
)

var (
	configFile string
	logLevel   string
	logFormat  string

	backendName    string
	methodName     string
	padID          int64
	predictionsKey string
	targetsKey     string
	perSequence    bool
	outputFormat   string
	workers        int64
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       config.DefaultPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func computeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "tensor backend (" + strings.Join(backend.Names(), ", ") + ")",
			Value:       backend.CPU,
			Destination: &backendName,
		},
		&cli.StringFlag{
			Name:        "method",
			Usage:       "true-class extraction (gather, onehot)",
			Value:       "gather",
			Destination: &methodName,
		},
		&cli.Int64Flag{
			Name:        "pad-id",
			Usage:       "target id marking padding (default: file metadata, else 0)",
			Destination: &padID,
		},
		&cli.StringFlag{
			Name:        "predictions-key",
			Usage:       "tensor name of the [batch, seq, vocab] log-probabilities",
			Value:       loader.DefaultPredictionsKey,
			Destination: &predictionsKey,
		},
		&cli.StringFlag{
			Name:        "targets-key",
			Usage:       "tensor name of the [batch, seq] target ids",
			Value:       loader.DefaultTargetsKey,
			Destination: &targetsKey,
		},
		&cli.BoolFlag{
			Name:        "per-sequence",
			Usage:       "also report every batch row",
			Destination: &perSequence,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format (text, json)",
			Value:       "text",
			Destination: &outputFormat,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "files evaluated concurrently",
			Value:       int64(runtime.NumCPU()),
			Destination: &workers,
		},
	}
}
