package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/randomizedcoder/linkq/internal/config"
)

// app carries state shared by the subcommands. cfg is final once the
// root PersistentPreRunE has run.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	// Flag targets; copied into cfg only when the user set them.
	benchFlags config.Bench
	pumpFlags  config.Pump

	cfg config.Config
	log *logrus.Logger
}

func rootCommand() *cobra.Command {
	return newRoot(&app{})
}

func newRoot(a *app) *cobra.Command {
	defaults := config.Default()

	root := &cobra.Command{
		Use:           "linkq",
		Short:         "Benchmark and demo for the SPSC linked queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", defaults.Log.Format, "Log format (text or json)")

	root.AddCommand(benchCommand(a))
	root.AddCommand(pumpCommand(a))
	return root
}

// load reads the config file, then applies any flag the user set
// explicitly, so flags win over the file and the file wins over defaults.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	a.applyBenchFlags(cmd, &cfg.Bench)
	a.applyPumpFlags(cmd, &cfg.Pump)

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Logger()
	return nil
}
