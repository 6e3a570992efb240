package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/randomizedcoder/linkq/internal/config"
	"github.com/randomizedcoder/linkq/internal/metrics"
	"github.com/randomizedcoder/linkq/internal/pump"
	"github.com/randomizedcoder/linkq/internal/statsserver"
)

func pumpCommand(a *app) *cobra.Command {
	defaults := config.Default().Pump
	cmd := &cobra.Command{
		Use:   "pump",
		Short: "Feed sequenced events through a mailbox and verify their order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPump(cmd, a)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&a.pumpFlags.Events, "events", "e", defaults.Events, "Events to send, 0 = until --duration")
	f.Float64VarP(&a.pumpFlags.Rate, "rate", "r", defaults.Rate, "Events per second, 0 = unlimited")
	f.IntVar(&a.pumpFlags.Burst, "burst", defaults.Burst, "Rate limiter burst")
	f.DurationVarP(&a.pumpFlags.Duration, "duration", "d", defaults.Duration, "Stop producing after this long")
	f.DurationVar(&a.pumpFlags.ReportInterval, "report-interval", defaults.ReportInterval, "Consumer report interval")
	f.IntVar(&a.pumpFlags.ReportEvery, "report-every", defaults.ReportEvery, "Messages between report clock checks")
	f.DurationVar(&a.pumpFlags.RenderDelay, "render-delay", defaults.RenderDelay, "Simulated work per event on the consumer")
	f.StringVar(&a.pumpFlags.MetricsAddr, "metrics-addr", defaults.MetricsAddr, "Serve /stats and /metrics on this address")
	f.BoolVar(&a.pumpFlags.Live, "live", defaults.Live, "Render live progress")
	return cmd
}

func (a *app) applyPumpFlags(cmd *cobra.Command, cfg *config.Pump) {
	flags := cmd.Flags()
	if flags.Lookup("events") == nil {
		return
	}
	if flags.Changed("events") {
		cfg.Events = a.pumpFlags.Events
	}
	if flags.Changed("rate") {
		cfg.Rate = a.pumpFlags.Rate
	}
	if flags.Changed("burst") {
		cfg.Burst = a.pumpFlags.Burst
	}
	if flags.Changed("duration") {
		cfg.Duration = a.pumpFlags.Duration
	}
	if flags.Changed("report-interval") {
		cfg.ReportInterval = a.pumpFlags.ReportInterval
	}
	if flags.Changed("report-every") {
		cfg.ReportEvery = a.pumpFlags.ReportEvery
	}
	if flags.Changed("render-delay") {
		cfg.RenderDelay = a.pumpFlags.RenderDelay
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.pumpFlags.MetricsAddr
	}
	if flags.Changed("live") {
		cfg.Live = a.pumpFlags.Live
	}
}

func runPump(cmd *cobra.Command, a *app) error {
	cfg := a.cfg.Pump
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m, err := metrics.NewMailbox(reg, "pump")
	if err != nil {
		return err
	}

	p := pump.New(cfg, a.log, m)

	if cfg.MetricsAddr != "" {
		srvCtx, srvCancel := context.WithCancel(context.Background())
		defer srvCancel()
		srv := statsserver.New(cfg.MetricsAddr, func() any { return p.Stats() }, reg, a.log)
		if err := srv.Start(srvCtx); err != nil {
			return err
		}
	}

	var progress io.Writer
	if cfg.Live {
		progress = out
	}

	a.log.WithFields(logrus.Fields{
		"events":   cfg.Events,
		"rate":     cfg.Rate,
		"duration": cfg.Duration,
	}).Info("pump starting")

	summary, err := p.Run(ctx, progress)
	summary.Print(out)
	return err
}
