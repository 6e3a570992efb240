package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/randomizedcoder/linkq/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkq.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func Test_Config(t *testing.T) {
	convey.Convey("loading configuration", t, func() {
		convey.Convey("defaults are valid", func() {
			cfg, err := config.Load("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg, convey.ShouldResemble, config.Default())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("a YAML file overrides selected fields", func() {
			path := writeFile(t, `
log:
  level: debug
  format: json
pump:
  events: 500
  rate: 1000
  burst: 10
  report_interval: 250ms
bench:
  runs: 3
`)
			cfg, err := config.Load(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Log.Level, convey.ShouldEqual, "debug")
			convey.So(cfg.Pump.Events, convey.ShouldEqual, 500)
			convey.So(cfg.Pump.Rate, convey.ShouldEqual, 1000.0)
			convey.So(cfg.Pump.ReportInterval, convey.ShouldEqual, 250*time.Millisecond)
			convey.So(cfg.Bench.Runs, convey.ShouldEqual, 3)
			convey.So(cfg.Bench.Iterations, convey.ShouldEqual, config.Default().Bench.Iterations)

			log := cfg.Logger()
			convey.So(log.GetLevel(), convey.ShouldEqual, logrus.DebugLevel)
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			convey.So(isJSON, convey.ShouldBeTrue)
		})

		convey.Convey("a missing file is an error", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("malformed YAML is an error", func() {
			_, err := config.Load(writeFile(t, "log: [unclosed"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func Test_ConfigValidate(t *testing.T) {
	convey.Convey("validation rejects", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"unknown level", func(c *config.Config) { c.Log.Level = "loud" }},
			{"unknown format", func(c *config.Config) { c.Log.Format = "xml" }},
			{"negative events", func(c *config.Config) { c.Pump.Events = -1 }},
			{"no stop condition", func(c *config.Config) { c.Pump.Events = 0 }},
			{"negative rate", func(c *config.Config) { c.Pump.Rate = -1 }},
			{"rate without burst", func(c *config.Config) { c.Pump.Rate = 10; c.Pump.Burst = 0 }},
			{"zero interval", func(c *config.Config) { c.Pump.ReportInterval = 0 }},
			{"zero iterations", func(c *config.Config) { c.Bench.Iterations = 0 }},
			{"zero runs", func(c *config.Config) { c.Bench.Runs = 0 }},
			{"zero size", func(c *config.Config) { c.Bench.Size = 0 }},
		}
		for _, tc := range cases {
			convey.Convey(tc.name, func() {
				cfg := config.Default()
				tc.mutate(&cfg)
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		}
	})

	convey.Convey("validation accepts a duration-only pump", t, func() {
		cfg := config.Default()
		cfg.Pump.Events = 0
		cfg.Pump.Duration = time.Second
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
