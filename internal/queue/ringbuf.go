package queue

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// RingBuffer is a bounded lock-free SPSC queue over a power-of-two slice.
//
// WARNING: This queue is NOT safe for multiple producers or multiple consumers.
// WithRoleGuards turns misuse into a panic instead of silent corruption.
type RingBuffer[T any] struct {
	buf  []T
	mask uint64

	_pad0 [40]byte //nolint:unused

	// head is the next slot to write. Written by producer only.
	head atomic.Uint64
	full atomic.Uint64 // Push calls rejected for lack of space

	_pad1 [48]byte //nolint:unused

	// tail is the next slot to read. Written by consumer only.
	tail       atomic.Uint64
	emptyPolls atomic.Uint64

	_pad2 [48]byte //nolint:unused

	pushActive atomic.Uint32
	popActive  atomic.Uint32

	closed    atomic.Bool
	closeOnce sync.Once

	cfg config[T]
}

// NewRingBuffer creates a RingBuffer holding at least size values.
// size is rounded up to the next power of two; size < 1 means 1.
// WithChecks has no effect: a ring has no chain protocol to check.
func NewRingBuffer[T any](size int, opts ...Option[T]) *RingBuffer[T] {
	n := uint64(1)
	for n < uint64(max(size, 1)) {
		n <<= 1
	}

	r := &RingBuffer[T]{
		buf:  make([]T, n),
		mask: n - 1,
		cfg:  config[T]{log: logrus.StandardLogger()},
	}
	for _, opt := range opts {
		opt(&r.cfg)
	}
	return r
}

// Push stores v and reports whether there was room.
//
// SPSC CONTRACT: Only ONE goroutine may call Push().
func (r *RingBuffer[T]) Push(v T) bool {
	if r.cfg.guards {
		if !r.pushActive.CompareAndSwap(0, 1) {
			panic(ErrConcurrentPush)
		}
		defer r.pushActive.Store(0)
	}
	if r.closed.Load() {
		panic(ErrClosed)
	}

	head := r.head.Load()
	if head-r.tail.Load() >= uint64(len(r.buf)) {
		r.full.Add(1)
		return false
	}

	r.buf[head&r.mask] = v
	// The store publishes the slot to the consumer.
	r.head.Store(head + 1)
	return true
}

// Pop removes and returns the oldest value.
// Returns false if the queue is empty (non-blocking).
//
// SPSC CONTRACT: Only ONE goroutine may call Pop().
func (r *RingBuffer[T]) Pop() (T, bool) {
	if r.cfg.guards {
		if !r.popActive.CompareAndSwap(0, 1) {
			panic(ErrConcurrentPop)
		}
		defer r.popActive.Store(0)
	}
	if r.closed.Load() {
		panic(ErrClosed)
	}

	var zero T
	tail := r.tail.Load()
	if tail >= r.head.Load() {
		r.emptyPolls.Add(1)
		return zero, false
	}

	slot := &r.buf[tail&r.mask]
	v := *slot
	*slot = zero
	// The store hands the slot back to the producer.
	r.tail.Store(tail + 1)
	return v, true
}

// Len returns the current number of values in the queue.
// This is an approximation and may be slightly stale.
func (r *RingBuffer[T]) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	return int(head - tail)
}

// Cap returns the capacity of the queue.
func (r *RingBuffer[T]) Cap() int {
	return len(r.buf)
}

// Rejected returns how many Push calls found the ring full.
func (r *RingBuffer[T]) Rejected() uint64 {
	return r.full.Load()
}

// EmptyPolls returns how many Pop calls found the ring empty.
func (r *RingBuffer[T]) EmptyPolls() uint64 {
	return r.emptyPolls.Load()
}

// Close hands values still queued to the drop hook in FIFO order and
// releases the slots. Only the first call has any effect; Push and Pop
// panic with ErrClosed afterwards.
//
// Close must not run concurrently with Push or Pop.
func (r *RingBuffer[T]) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		var zero T
		for i, head := r.tail.Load(), r.head.Load(); i < head; i++ {
			slot := &r.buf[i&r.mask]
			if r.cfg.drop != nil {
				r.cfg.drop(*slot)
			}
			*slot = zero
		}
		r.tail.Store(r.head.Load())
		r.buf = nil
	})
}
