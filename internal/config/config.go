// Package config loads the linkq command configuration.
//
// Values come from Default(), then an optional YAML file, then command
// line flags bound by the caller.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration for cmd/linkq.
type Config struct {
	Log   Log   `yaml:"log"`
	Pump  Pump  `yaml:"pump"`
	Bench Bench `yaml:"bench"`
}

// Log configures logrus.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Pump configures the producer/consumer demo.
type Pump struct {
	Events         int           `yaml:"events"`
	Rate           float64       `yaml:"rate"` // events per second, 0 = unlimited
	Burst          int           `yaml:"burst"`
	Duration       time.Duration `yaml:"duration"`
	ReportInterval time.Duration `yaml:"report_interval"`
	ReportEvery    int           `yaml:"report_every"`
	RenderDelay    time.Duration `yaml:"render_delay"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	Live           bool          `yaml:"live"`
}

// Bench configures the throughput comparison.
type Bench struct {
	Iterations int    `yaml:"iterations"`
	Runs       int    `yaml:"runs"`
	Size       int    `yaml:"size"` // buffer size for the bounded baselines
	Plot       string `yaml:"plot"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Pump: Pump{
			Events:         100_000,
			Rate:           0,
			Burst:          1,
			Duration:       0,
			ReportInterval: 2 * time.Second,
			ReportEvery:    256,
		},
		Bench: Bench{
			Iterations: 1_000_000,
			Runs:       5,
			Size:       1024,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config: read")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "config: log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}

	switch {
	case c.Pump.Events < 0:
		return errors.New("config: pump.events must not be negative")
	case c.Pump.Events == 0 && c.Pump.Duration <= 0:
		return errors.New("config: pump needs events or duration")
	case c.Pump.Rate < 0:
		return errors.New("config: pump.rate must not be negative")
	case c.Pump.Rate > 0 && c.Pump.Burst < 1:
		return errors.New("config: pump.burst must be at least 1 when rate is set")
	case c.Pump.ReportInterval <= 0:
		return errors.New("config: pump.report_interval must be positive")
	}

	switch {
	case c.Bench.Iterations < 1:
		return errors.New("config: bench.iterations must be positive")
	case c.Bench.Runs < 1:
		return errors.New("config: bench.runs must be positive")
	case c.Bench.Size < 1:
		return errors.New("config: bench.size must be positive")
	}
	return nil
}

// Logger builds a logrus logger from c.Log. Call Validate first.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if c.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
