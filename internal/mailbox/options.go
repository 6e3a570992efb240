package mailbox

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/linkq/internal/metrics"
	"github.com/randomizedcoder/linkq/internal/queue"
	"github.com/randomizedcoder/linkq/internal/tick"
)

type config[T any] struct {
	name        string
	log         logrus.FieldLogger
	metrics     *metrics.Mailbox
	interval    time.Duration
	every       int
	stopOnError bool
	queueOpts   []queue.Option[T]
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		name:     "mailbox",
		log:      logrus.StandardLogger(),
		interval: tick.DefaultInterval,
		every:    64,
	}
}

// Option configures a Mailbox.
type Option[T any] func(*config[T])

// WithName labels log lines and reports.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) {
		c.name = name
	}
}

// WithLogger sets the logger. The queue's invariant checks log through it too.
func WithLogger[T any](log logrus.FieldLogger) Option[T] {
	return func(c *config[T]) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics publishes counters and gauges to m.
func WithMetrics[T any](m *metrics.Mailbox) Option[T] {
	return func(c *config[T]) {
		c.metrics = m
	}
}

// WithReportInterval sets how often the consumer logs and publishes a
// stats report while busy.
func WithReportInterval[T any](d time.Duration) Option[T] {
	return func(c *config[T]) {
		c.interval = d
	}
}

// WithReportEvery makes the consumer read the clock only once per n
// messages when deciding whether a report is due.
func WithReportEvery[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.every = n
	}
}

// WithStopOnError makes Run return the first handler error.
func WithStopOnError[T any]() Option[T] {
	return func(c *config[T]) {
		c.stopOnError = true
	}
}

// WithQueueOptions passes options through to the underlying LinkedQueue.
func WithQueueOptions[T any](opts ...queue.Option[T]) Option[T] {
	return func(c *config[T]) {
		c.queueOpts = append(c.queueOpts, opts...)
	}
}
