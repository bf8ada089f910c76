// Package main provides the perplexity CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/config"
	"github.com/born-ml/perplexity/internal/logger"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		os.Exit(1)
	}
}

// fileConfig is the config file loaded by the root Before hook.
var fileConfig config.Config

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "perplexity",
		Usage:     "Language-model perplexity over padded batches",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     rootFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(configFile)
			if err != nil {
				return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fileConfig = cfg
			applyLogConfig(cmd, cfg)

			log, err := logger.New(stderr, logger.ParseLevel(logLevel), logFormat)
			if err != nil {
				return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		// Exit codes are handled in main so that tests can run the app.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			computeCmd(),
			packCmd(),
			versionCmd(),
		},
	}
}
