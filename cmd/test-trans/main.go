// Package main provides the test-trans command, which evaluates the
// registered matrix transpose routines on a 1KB direct-mapped cache with
// 32-byte blocks.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/trace"
	"github.com/sarchlab/csim/transpose"
)

func init() {
	transpose.Register("Blocked 8x8 tile transpose", transpose.Tiled8)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		m, n     int
		traceOut string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "test-trans -M <rows> -N <cols>",
		Short:         "Count cache misses of the registered transpose routines",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)

			results, err := transpose.EvaluateAll(m, n)
			if err != nil {
				return err
			}

			if err := report(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			if traceOut != "" {
				return writeTrace(traceOut, results[0].Ops)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&m, "cols", "M", 32, "Number of matrix columns.")
	f.IntVarP(&n, "rows", "N", 32, "Number of matrix rows.")
	f.StringVar(&traceOut, "trace-out", "", "Write the access trace of the submission to this file.")
	f.StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error).")

	return cmd
}

func report(w io.Writer, results []transpose.Result) error {
	for i, r := range results {
		correct := "correct"
		if !r.Correct {
			correct = "INCORRECT"
		}

		_, err := fmt.Fprintf(w,
			"func %d (%s): %s, hits:%d, misses:%d, evictions:%d\n",
			i, r.Desc, correct, r.Stats.Hits, r.Stats.Misses, r.Stats.Evictions)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeTrace(path string, ops []trace.Operation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	if err := trace.NewWriter(f).WriteAll(ops); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write trace file: %w", err)
	}

	return f.Close()
}
