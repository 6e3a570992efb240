package cancel

import "sync/atomic"

type stopped struct {
	cause error
}

// Signal is a lock-free stop flag. Only the first cause is kept.
type Signal struct {
	state atomic.Pointer[stopped]
}

// NewSignal returns an unfired Signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Done is a single atomic load.
func (s *Signal) Done() bool {
	return s.state.Load() != nil
}

// Cancel fires the signal with ErrCancelled.
func (s *Signal) Cancel() {
	s.Fire(ErrCancelled)
}

// Fire records cause and reports whether this call fired the signal.
// A nil cause is recorded as ErrCancelled.
func (s *Signal) Fire(cause error) bool {
	if cause == nil {
		cause = ErrCancelled
	}
	return s.state.CompareAndSwap(nil, &stopped{cause: cause})
}

// Cause returns the first recorded cause.
func (s *Signal) Cause() error {
	if st := s.state.Load(); st != nil {
		return st.cause
	}
	return nil
}
