package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/urfave/cli/v3"
	"github.com/zeebo/xxh3"

	"github.com/tednaleid/streamcount/distinct"
)

// CommandOption type for configuring the command, mostly so tests can swap
// out the action or the input stream.
type CommandOption func(*cli.Command)

// WithAction is a helper function to create a CommandOption that sets the action of the command
func WithAction(action cli.ActionFunc) CommandOption {
	return func(c *cli.Command) {
		c.Action = action
	}
}

func setupCommand(opts ...CommandOption) *cli.Command {
	cmd := &cli.Command{
		Name:  "distinct",
		Usage: "Estimate the number of distinct lines on stdin with a fixed-size sample",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "capacity",
				Aliases: []string{"s"},
				Usage:   "Explicit sample buffer capacity (overrides eps/delta/expected)",
			},
			&cli.Float64Flag{
				Name:  "eps",
				Value: 0.05,
				Usage: "Relative error target, in (0,1)",
			},
			&cli.Float64Flag{
				Name:  "delta",
				Value: 0.01,
				Usage: "Failure probability target, in (0,1)",
			},
			&cli.IntFlag{
				Name:    "expected",
				Aliases: []string{"n"},
				Value:   100_000_000,
				Usage:   "Upper bound on the number of input lines",
			},
			&cli.BoolFlag{
				Name:  "exact",
				Usage: "Also count exactly with a roaring bitmap of line hashes, for comparison",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return countDistinct(cmd, os.Stdin, os.Stdout)
		},
	}

	for _, opt := range opts {
		opt(cmd)
	}
	return cmd
}

func newEstimator(cmd *cli.Command) (*distinct.Estimator[uint64], error) {
	if capacity := int(cmd.Int("capacity")); capacity > 0 {
		return distinct.New[uint64](capacity)
	}
	expected := cmd.Int("expected")
	if expected < 1 {
		return nil, fmt.Errorf("expected stream length must be positive, got %d", expected)
	}
	return distinct.NewFromAccuracy[uint64](cmd.Float64("eps"), cmd.Float64("delta"), uint64(expected))
}

func countDistinct(cmd *cli.Command, in io.Reader, out io.Writer) error {
	estimator, err := newEstimator(cmd)
	if err != nil {
		return err
	}

	var exact *roaring64.Bitmap
	if cmd.Bool("exact") {
		exact = roaring64.New()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		// lines become opaque elements via their 64-bit hash
		h := xxh3.Hash(scanner.Bytes())
		if err := estimator.Ingest(h); err != nil {
			return fmt.Errorf("input outgrew the sizing bound, rerun with a larger --capacity or --expected: %w", err)
		}
		if exact != nil {
			exact.Add(h)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading standard input: %w", err)
	}

	fmt.Fprintf(out, "Estimated distinct: %.0f\n", estimator.Estimate())
	fmt.Fprintf(out, "Lines processed: %d\n", estimator.ElementsProcessed())
	fmt.Fprintf(out, "Retention probability: %g\n", estimator.RetentionProbability())
	fmt.Fprintf(out, "Sample: %d of %d slots\n", estimator.SampleSize(), estimator.Capacity())

	if exact != nil {
		memorySize := exact.GetSizeInBytes()
		fmt.Fprintf(out, "Exact distinct: %d\n", exact.GetCardinality())
		fmt.Fprintf(out, "Exact bitmap memory: %d bytes, %.2fMB\n", memorySize, float64(memorySize)/1024/1024)
	}
	return nil
}

func main() {
	if err := setupCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
