package main

import (
	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/config"
)

// applyLogConfig applies config file logging defaults when the flags were not
// set explicitly.
func applyLogConfig(c *cli.Command, cfg config.Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyComputeConfig applies config file defaults to compute command
// variables. It reports whether the pad id came from a flag or the config
// file rather than the built-in default.
func applyComputeConfig(c *cli.Command, cfg config.Config) (padIDSet bool) {
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.Method != "" && !c.IsSet("method") {
		methodName = cfg.Method
	}
	if cfg.PredictionsKey != "" && !c.IsSet("predictions-key") {
		predictionsKey = cfg.PredictionsKey
	}
	if cfg.TargetsKey != "" && !c.IsSet("targets-key") {
		targetsKey = cfg.TargetsKey
	}
	if cfg.Format != "" && !c.IsSet("format") {
		outputFormat = cfg.Format
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if c.IsSet("pad-id") {
		return true
	}
	if cfg.PadID != nil {
		padID = *cfg.PadID
		return true
	}
	return false
}
