package event

import "github.com/pkg/errors"

// ErrOutOfOrder is returned by Sequencer.Observe for a gap or a repeat.
var ErrOutOfOrder = errors.New("event: out of order")

// Sequencer checks on the consumer side that events arrive exactly once
// and in producer order. Not safe for concurrent use.
type Sequencer struct {
	next uint64
	seen uint64
}

// NewSequencer expects the first event to carry seq first.
func NewSequencer(first uint64) *Sequencer {
	return &Sequencer{next: first}
}

// Observe records e and fails if it is not the next expected event.
func (s *Sequencer) Observe(e Event) error {
	if e.Seq != s.next {
		return errors.Wrapf(ErrOutOfOrder, "expected seq %d, got %d", s.next, e.Seq)
	}
	s.next++
	s.seen++
	return nil
}

// Seen returns the number of in-order events observed.
func (s *Sequencer) Seen() uint64 {
	return s.seen
}
