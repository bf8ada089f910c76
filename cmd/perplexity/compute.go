package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/backend"
	"github.com/born-ml/perplexity/internal/loader"
	"github.com/born-ml/perplexity/internal/logger"
	"github.com/born-ml/perplexity/internal/perplexity"
	"github.com/born-ml/perplexity/internal/tensor"
)

func computeCmd() *cli.Command {
	return &cli.Command{
		Name:      "compute",
		Usage:     "Compute perplexity of SafeTensors evaluation sets",
		ArgsUsage: "<eval.safetensors>...",
		Flags:     computeFlags(),
		Action:    runCompute,
	}
}

// evalJob is the resolved configuration shared by every file of a run.
type evalJob struct {
	runID       string
	backend     tensor.Backend
	method      perplexity.Method
	padID       int64
	padIDSet    bool
	perSequence bool
}

func runCompute(ctx context.Context, cmd *cli.Command) error {
	padIDSet := applyComputeConfig(cmd, fileConfig)
	log := logger.FromContext(ctx)

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("error: at least one evaluation file is required", 1)
	}
	if outputFormat != formatText && outputFormat != formatJSON {
		return cli.Exit(fmt.Sprintf("error: unknown format %q (expected text or json)", outputFormat), 1)
	}
	if workers < 1 {
		return cli.Exit(fmt.Sprintf("error: --workers must be >= 1, got %d", workers), 1)
	}

	method, err := perplexity.ParseMethod(methodName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	be, err := backend.Open(backendName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	job := evalJob{
		runID:       uuid.NewString(),
		backend:     be,
		method:      method,
		padID:       padID,
		padIDSet:    padIDSet,
		perSequence: perSequence,
	}
	log = log.With().Str("run_id", job.runID).Str("backend", be.Name()).Str("method", method.String()).Logger()
	log.Debug().Int("files", len(files)).Int64("workers", workers).Msg("starting run")

	p := pool.NewWithResults[report]().WithMaxGoroutines(int(workers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) (report, error) {
			return evaluate(ctx, job, i, path)
		})
	}
	reports, runErr := p.Wait()
	sort.Slice(reports, func(a, b int) bool { return reports[a].index < reports[b].index })

	if err := writeReports(cmd.Root().Writer, outputFormat, reports); err != nil {
		return cli.Exit(fmt.Sprintf("error: write results: %v", err), 1)
	}
	if runErr != nil {
		log.Error().Err(runErr).Int("failed", len(files)-len(reports)).Msg("run finished with errors")
		return cli.Exit(fmt.Sprintf("error: %v", runErr), 1)
	}
	log.Info().Int("files", len(reports)).Msg("run finished")
	return nil
}

func evaluate(ctx context.Context, job evalJob, index int, path string) (report, error) {
	if err := ctx.Err(); err != nil {
		return report{}, err
	}
	log := logger.FromContext(ctx).With().Str("run_id", job.runID).Str("file", path).Logger()

	start := time.Now()
	set, err := loader.LoadEvalSet(path, predictionsKey, targetsKey, job.backend)
	if err != nil {
		return report{}, err
	}
	log.Debug().
		Interface("predictions", set.Predictions.Shape()).
		Stringer("dtype", set.Predictions.DType()).
		Dur("load", time.Since(start)).
		Msg("loaded eval set")

	pad := job.padID
	if !job.padIDSet {
		pad = set.PadID(perplexity.DefaultPadID)
	}
	calc := perplexity.NewCalculator(job.backend, perplexity.WithPadID(pad), perplexity.WithMethod(job.method))

	res, err := calc.Compute(set.Predictions, set.Targets)
	if err != nil {
		return report{}, fmt.Errorf("%s: %w", path, err)
	}
	rep := report{
		index:   index,
		RunID:   job.runID,
		File:    path,
		Backend: job.backend.Name(),
		Method:  job.method.String(),
		PadID:   pad,
		Result:  res,
	}
	if job.perSequence {
		rep.Sequences, err = calc.ComputePerSequence(set.Predictions, set.Targets)
		if err != nil {
			return report{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	log.Info().
		Float64("perplexity", res.Perplexity).
		Int("tokens", res.TokenCount).
		Dur("elapsed", time.Since(start)).
		Msg("computed")
	return rep, nil
}
