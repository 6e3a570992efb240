package tick

import "time"

// Schedule fires at most once per interval, checking the clock only on
// every Nth call to Tick.
//
// Not safe for concurrent use. It belongs to the single consumer that
// polls it.
type Schedule struct {
	interval time.Duration
	every    int
	count    int
	last     time.Duration
	fired    uint64
	clock    Clock
}

// New creates a Schedule. A non-positive interval falls back to
// DefaultInterval and every < 1 is treated as 1.
func New(interval time.Duration, every int, opts ...Option) *Schedule {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if every < 1 {
		every = 1
	}
	s := &Schedule{
		interval: interval,
		every:    every,
		clock:    Monotonic,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.last = s.clock()
	return s
}

// Tick reports whether the interval has elapsed since the last time it
// returned true. Calls between clock checks return false.
func (s *Schedule) Tick() bool {
	s.count++
	if s.count < s.every {
		return false
	}
	s.count = 0

	now := s.clock()
	if now-s.last < s.interval {
		return false
	}
	s.last = now
	s.fired++
	return true
}

// Reset starts a new interval and a new batch from now.
func (s *Schedule) Reset() {
	s.count = 0
	s.last = s.clock()
}

// Fired returns how many times Tick has returned true.
func (s *Schedule) Fired() uint64 {
	return s.fired
}

// Interval returns the configured interval.
func (s *Schedule) Interval() time.Duration {
	return s.interval
}

// Every returns how many calls share one clock check.
func (s *Schedule) Every() int {
	return s.every
}
