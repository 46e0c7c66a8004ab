package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/config"
	"github.com/sarchlab/csim/metrics"
	"github.com/sarchlab/csim/reference"
	"github.com/sarchlab/csim/sim"
	"github.com/sarchlab/csim/trace"
)

// Exit codes.
const (
	exitConfig   = 1
	exitIO       = 2
	exitMismatch = 3
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

const examples = `  csim -s 4 -E 1 -b 4 -t traces/yi.trace
  csim -v -s 8 -E 2 -b 4 -t traces/yi.trace`

type options struct {
	cfg        *config.Config
	configPath string
	check      bool
	metricsOut string
	results    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:           "csim [-hv] -s <num> -E <num> -b <num> -t <file>",
		Short:         "Simulate a set-associative cache on a memory trace",
		Example:       examples,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.BoolVarP(&opts.cfg.Verbose, "verbose", "v", false, "Optional verbose flag.")
	f.IntVarP(&opts.cfg.IndexBits, "sets", "s", 0, "Number of set index bits.")
	f.IntVarP(&opts.cfg.LinesPerSet, "lines", "E", 0, "Number of lines per set.")
	f.IntVarP(&opts.cfg.BlockBits, "block", "b", 0, "Number of block offset bits.")
	f.StringVarP(&opts.cfg.Trace, "trace", "t", "", "Trace file.")
	f.StringVar(&opts.configPath, "config", "", "YAML file with default settings.")
	f.BoolVar(&opts.check, "check", false, "Cross-check every access against the Akita reference model.")
	f.StringVar(&opts.metricsOut, "metrics-out", "", "Write Prometheus counters to this file.")
	f.StringVar(&opts.results, "results", "", "Write \"hits misses evictions\" to this file.")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error).")

	return cmd
}

// resolveConfig applies flags given on the command line over the YAML file.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if opts.configPath == "" {
		return opts.cfg, nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("verbose") {
		cfg.Verbose = opts.cfg.Verbose
	}
	if f.Changed("sets") {
		cfg.IndexBits = opts.cfg.IndexBits
	}
	if f.Changed("lines") {
		cfg.LinesPerSet = opts.cfg.LinesPerSet
	}
	if f.Changed("block") {
		cfg.BlockBits = opts.cfg.BlockBits
	}
	if f.Changed("trace") {
		cfg.Trace = opts.cfg.Trace
	}

	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return &exitError{exitConfig, fmt.Errorf("invalid log level: %s", opts.logLevel)}
	}
	logrus.SetLevel(level)

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return &exitError{exitConfig, err}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return &exitError{exitConfig, err}
	}

	file, err := os.Open(cfg.Trace)
	if err != nil {
		return &exitError{exitConfig, err}
	}
	defer func() { _ = file.Close() }()

	stdout := bufio.NewWriter(cmd.OutOrStdout())
	defer func() { _ = stdout.Flush() }()

	stats, err := replay(cfg, opts, file, stdout)
	if err != nil {
		return err
	}

	if opts.results != "" {
		if err := sim.WriteResults(opts.results, stats); err != nil {
			return &exitError{exitIO, err}
		}
	}

	if err := sim.PrintSummary(stdout, stats); err != nil {
		return &exitError{exitIO, err}
	}

	return nil
}

func replay(
	cfg *config.Config,
	opts *options,
	input io.Reader,
	output io.Writer,
) (cache.Statistics, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return cache.Statistics{}, &exitError{exitConfig, err}
	}

	simOpts := []sim.Option{sim.WithLogger(logrus.WithField("trace", cfg.Trace))}
	if cfg.Verbose {
		simOpts = append(simOpts, sim.WithVerbose(output))
	}

	var checker *reference.Checker
	if opts.check {
		checker, err = reference.NewChecker(layout, cfg.LinesPerSet)
		if err != nil {
			return cache.Statistics{}, &exitError{exitConfig, err}
		}
		simOpts = append(simOpts, sim.WithObserver(checker))
	}

	var collector *metrics.Collector
	if opts.metricsOut != "" {
		collector, err = metrics.NewCollector(&cfg.Metrics)
		if err != nil {
			return cache.Statistics{}, &exitError{exitConfig, err}
		}
		simOpts = append(simOpts, sim.WithObserver(collector))
	}

	simulation, err := sim.New(layout, cfg.LinesPerSet, simOpts...)
	if err != nil {
		return cache.Statistics{}, &exitError{exitConfig, err}
	}

	reader := trace.NewReader(input)
	stats, err := simulation.Run(reader)
	if err != nil {
		return stats, &exitError{exitIO, err}
	}

	if line, early := reader.StoppedAt(); early {
		logrus.WithFields(logrus.Fields{
			"line":   reader.LineNumber(),
			"prefix": truncate(line, 32),
		}).Debug("replay stopped at a line that is not a data access")
	}

	if collector != nil {
		collector.RecordDirtyEvictions(stats)
		if err := collector.WriteTextfile(opts.metricsOut); err != nil {
			return stats, &exitError{exitIO, err}
		}
	}

	if checker != nil {
		if err := checker.Err(); err != nil {
			return stats, &exitError{exitMismatch, fmt.Errorf(
				"%d of %d accesses differ from the reference model, first: %w",
				len(checker.Mismatches()), checker.Checked(), err)}
		}
		logrus.Infof("reference model agrees on %d accesses", checker.Checked())
	}

	return stats, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
