package main

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/born-ml/perplexity/internal/batch"
	"github.com/born-ml/perplexity/internal/loader"
	"github.com/born-ml/perplexity/internal/logger"
	"github.com/born-ml/perplexity/internal/serialization"
	"github.com/born-ml/perplexity/internal/tensor"
	"github.com/born-ml/perplexity/internal/tokenizer"
)

// maxLineSize bounds a single input line for bufio.Scanner.
const maxLineSize = 16 * 1024 * 1024

func packCmd() *cli.Command {
	var (
		tokenizerName string
		inputPath     string
		outputPath    string
		key           string
		packPadID     int64
		seqLen        int64
		truncate      bool
	)

	return &cli.Command{
		Name:  "pack",
		Usage: "Tokenize a text file (one sequence per line) into a padded targets tensor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "tokenizer",
				Aliases:     []string{"t"},
				Usage:       "tiktoken encoding, model name, or tokenizer.json path",
				Value:       tokenizer.EncodingCL100kBase,
				Destination: &tokenizerName,
			},
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input text file",
				Required:    true,
				Destination: &inputPath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output .safetensors file",
				Required:    true,
				Destination: &outputPath,
			},
			&cli.StringFlag{
				Name:        "key",
				Usage:       "tensor name for the packed targets",
				Value:       loader.DefaultTargetsKey,
				Destination: &key,
			},
			&cli.Int64Flag{
				Name:        "pad-id",
				Usage:       "pad id; must not be a real token id",
				Value:       -1,
				Destination: &packPadID,
			},
			&cli.Int64Flag{
				Name:        "seq-len",
				Usage:       "sequence length (0 = longest line)",
				Destination: &seqLen,
			},
			&cli.BoolFlag{
				Name:        "truncate",
				Usage:       "truncate lines longer than --seq-len",
				Destination: &truncate,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			if packPadID < math.MinInt32 || packPadID > math.MaxInt32 {
				return cli.Exit(fmt.Sprintf("error: --pad-id %d does not fit int32", packPadID), 1)
			}

			tok, err := tokenizer.Open(tokenizerName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			lines, err := readLines(inputPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			sequences, err := batch.EncodeLines(tok, lines)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			targets, err := batch.Pack(sequences, batch.Options{
				PadID:    int32(packPadID),
				SeqLen:   int(seqLen),
				Truncate: truncate,
			}, cpu.New())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			lengths, err := batch.Lengths(targets, int32(packPadID))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			total := 0
			for _, n := range lengths {
				total += n
			}

			metadata := map[string]string{
				loader.MetadataPadID: strconv.FormatInt(packPadID, 10),
				"tokenizer":          tok.Name(),
				"vocab_size":         strconv.Itoa(tok.VocabSize()),
			}
			err = serialization.WriteSafeTensors(outputPath, map[string]*tensor.RawTensor{key: targets.Raw()}, metadata)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			shape := targets.Shape()
			log.Info().
				Str("tokenizer", tok.Name()).
				Int("sequences", shape[0]).
				Int("seq_len", shape[1]).
				Int("tokens", total).
				Msg("packed")
			_, _ = fmt.Fprintf(cmd.Root().Writer, "wrote %s: %s %v (%d tokens)\n", outputPath, key, shape, total)
			return nil
		},
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line.
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
