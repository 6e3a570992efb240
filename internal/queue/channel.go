package queue

// ChannelQueue wraps a buffered channel as a Bounded queue.
//
// This is the standard library baseline: each Push/Pop is a select with a
// default case. It is safe for any number of goroutines.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue with the specified buffer size.
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{
		ch: make(chan T, size),
	}
}

// Push adds v. Returns false if the channel is full (non-blocking).
func (q *ChannelQueue[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Pop removes and returns the oldest value.
// Returns false if the channel is empty (non-blocking).
func (q *ChannelQueue[T]) Pop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of buffered values.
func (q *ChannelQueue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the buffer size.
func (q *ChannelQueue[T]) Cap() int {
	return cap(q.ch)
}
