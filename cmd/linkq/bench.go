package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/linkq/internal/bench"
	"github.com/randomizedcoder/linkq/internal/config"
)

func benchCommand(a *app) *cobra.Command {
	defaults := config.Default().Bench
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare producer to consumer handoff throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, a)
		},
	}
	cmd.Flags().IntVarP(&a.benchFlags.Iterations, "iterations", "n", defaults.Iterations, "Values transferred per run")
	cmd.Flags().IntVar(&a.benchFlags.Runs, "runs", defaults.Runs, "Runs per case")
	cmd.Flags().IntVar(&a.benchFlags.Size, "size", defaults.Size, "Capacity of the bounded baselines")
	cmd.Flags().StringVar(&a.benchFlags.Plot, "plot", defaults.Plot, "Save a bar chart to this file")
	return cmd
}

func (a *app) applyBenchFlags(cmd *cobra.Command, cfg *config.Bench) {
	flags := cmd.Flags()
	if flags.Lookup("iterations") == nil {
		return
	}
	if flags.Changed("iterations") {
		cfg.Iterations = a.benchFlags.Iterations
	}
	if flags.Changed("runs") {
		cfg.Runs = a.benchFlags.Runs
	}
	if flags.Changed("size") {
		cfg.Size = a.benchFlags.Size
	}
	if flags.Changed("plot") {
		cfg.Plot = a.benchFlags.Plot
	}
}

func runBench(cmd *cobra.Command, a *app) error {
	cfg := a.cfg.Bench
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Benchmarking SPSC handoff (%d values x %d runs)\n", cfg.Iterations, cfg.Runs)
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────")

	var results []bench.Result
	for _, c := range bench.Cases(cfg.Size) {
		a.log.WithField("case", c.Name).Debug("running")
		res, err := bench.Measure(c, cfg.Iterations, cfg.Runs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-14s done\n", c.Name)
		results = append(results, res)
	}
	bench.Report(out, results)

	if cfg.Plot != "" {
		if err := bench.Plot(results, cfg.Plot); err != nil {
			return err
		}
		a.log.WithField("file", cfg.Plot).Info("chart saved")
	}
	return nil
}
