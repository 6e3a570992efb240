package queue

import "github.com/sirupsen/logrus"

// CheckMode selects what Pop does when it finds the sentinel protocol broken.
type CheckMode int

const (
	// CheckLog reports the violation through the logger and carries on.
	CheckLog CheckMode = iota
	// CheckPanic panics with ErrInvariant. Use it in tests.
	CheckPanic
	// CheckOff skips the checks entirely.
	CheckOff
)

func (m CheckMode) String() string {
	switch m {
	case CheckLog:
		return "log"
	case CheckPanic:
		return "panic"
	case CheckOff:
		return "off"
	default:
		return "unknown"
	}
}

type config[T any] struct {
	checks CheckMode
	guards bool
	drop   func(T)
	log    logrus.FieldLogger
}

// Option configures a LinkedQueue.
type Option[T any] func(*config[T])

// WithChecks sets the invariant check mode. The default is CheckLog.
func WithChecks[T any](mode CheckMode) Option[T] {
	return func(c *config[T]) {
		c.checks = mode
	}
}

// WithRoleGuards enables the SPSC guards on Push and Pop.
func WithRoleGuards[T any]() Option[T] {
	return func(c *config[T]) {
		c.guards = true
	}
}

// WithDropHook registers fn to receive every value still queued when the
// queue is closed. fn runs on the goroutine that calls Close.
func WithDropHook[T any](fn func(T)) Option[T] {
	return func(c *config[T]) {
		c.drop = fn
	}
}

// WithLogger sets the logger used by CheckLog.
func WithLogger[T any](log logrus.FieldLogger) Option[T] {
	return func(c *config[T]) {
		if log != nil {
			c.log = log
		}
	}
}
