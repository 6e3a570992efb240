// Package tick decides when a polling loop is due for periodic work.
//
// A consumer draining a queue wants to publish a stats report every so
// often without a timer goroutine or a channel select per message. A
// Schedule is polled inline instead: Tick is a counter increment on most
// calls and reads the clock only once every N calls.
package tick

import "time"

// DefaultInterval is the report interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Clock returns a monotonic reading. Only differences between readings
// are meaningful.
type Clock func() time.Duration

var epoch = time.Now()

// Monotonic reads the runtime's monotonic clock, so wall clock jumps
// neither fire nor suppress ticks.
func Monotonic() time.Duration {
	return time.Since(epoch)
}

// Option configures a Schedule.
type Option func(*Schedule)

// WithClock replaces Monotonic, typically with a fake in tests.
func WithClock(c Clock) Option {
	return func(s *Schedule) {
		if c != nil {
			s.clock = c
		}
	}
}
