package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/backend"
)

// version is the release version (set via -ldflags "-X main.version=...").
var version = "v0.1.0-dev"

func versionString() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				return version + " (" + s.Value[:12] + ")"
			}
		}
	}
	return version
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			_, _ = fmt.Fprintf(w, "perplexity %s\n", versionString())
			_, _ = fmt.Fprintf(w, "backends:  %s\n", strings.Join(backend.Names(), ", "))
			return nil
		},
	}
}
