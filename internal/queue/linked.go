package queue

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LinkedQueue is an unbounded lock-free SPSC queue built on a singly
// linked chain with a payload-free sentinel at the consumption end.
//
// WARNING: This queue is NOT safe for multiple producers or multiple consumers.
// Push publishes a node before linking it; a second producer interleaving
// in that window would lose nodes.
type LinkedQueue[T any] struct {
	// insert is the most recently appended node. Written by producer only.
	insert    atomic.Pointer[node[T]]
	pushed    atomic.Uint64
	allocated atomic.Uint64

	// Cache line padding to prevent false sharing
	_pad0 [40]byte //nolint:unused

	// consume is the current sentinel. Read and written by consumer only.
	consume    *node[T]
	popped     atomic.Uint64
	emptyPolls atomic.Uint64
	freed      atomic.Uint64

	_pad1 [32]byte //nolint:unused

	// SPSC guards: detect concurrent misuse
	pushActive atomic.Uint32
	popActive  atomic.Uint32

	closed    atomic.Bool
	closeOnce sync.Once

	cfg config[T]
}

// New creates an empty LinkedQueue holding only its sentinel node.
func New[T any](opts ...Option[T]) *LinkedQueue[T] {
	q := &LinkedQueue[T]{
		cfg: config[T]{
			checks: CheckLog,
			log:    logrus.StandardLogger(),
		},
	}
	for _, opt := range opts {
		opt(&q.cfg)
	}

	var zero T
	stub := newNode(zero, false)
	q.insert.Store(stub)
	q.consume = stub
	q.allocated.Store(1)
	return q
}

// Push appends v to the queue.
//
// SPSC CONTRACT: Only ONE goroutine may call Push().
func (q *LinkedQueue[T]) Push(v T) {
	if q.cfg.guards {
		if !q.pushActive.CompareAndSwap(0, 1) {
			panic(ErrConcurrentPush)
		}
		defer q.pushActive.Store(0)
	}
	if q.closed.Load() {
		panic(ErrClosed)
	}

	n := newNode(v, true)
	q.allocated.Add(1)
	q.pushed.Add(1)

	// Publish n as the insertion point, then link it from its predecessor.
	// Until the Store below the consumer sees prev as the tail and reports
	// empty, which is correct for a single producer.
	prev := q.insert.Swap(n)
	prev.next.Store(n)
}

// Pop removes and returns the oldest value.
// Returns false if the queue is empty (non-blocking).
//
// SPSC CONTRACT: Only ONE goroutine may call Pop().
func (q *LinkedQueue[T]) Pop() (T, bool) {
	if q.cfg.guards {
		if !q.popActive.CompareAndSwap(0, 1) {
			panic(ErrConcurrentPop)
		}
		defer q.popActive.Store(0)
	}
	if q.closed.Load() {
		panic(ErrClosed)
	}

	sentinel := q.consume
	next := sentinel.next.Load()
	if next == nil {
		q.emptyPolls.Add(1)
		var zero T
		return zero, false
	}

	q.consume = next
	if q.cfg.checks != CheckOff {
		q.check(sentinel, next)
	}

	// next becomes the new sentinel once its payload is moved out.
	v := next.take()
	sentinel.free()
	q.freed.Add(1)
	q.popped.Add(1)
	return v, true
}

func (q *LinkedQueue[T]) check(old, next *node[T]) {
	var err error
	switch {
	case old.full:
		err = errors.Wrap(ErrInvariant, "retired sentinel still holds a payload")
	case !next.full:
		err = errors.Wrap(ErrInvariant, "successor of sentinel has no payload")
	default:
		return
	}
	if q.cfg.checks == CheckPanic {
		panic(err)
	}
	q.cfg.log.WithFields(logrus.Fields{
		"pushed": q.pushed.Load(),
		"popped": q.popped.Load(),
	}).WithError(err).Error("queue protocol violation")
}

// Empty reports whether Pop would currently return false.
//
// SPSC CONTRACT: consumer side only.
func (q *LinkedQueue[T]) Empty() bool {
	if q.closed.Load() {
		return true
	}
	return q.consume.next.Load() == nil
}

// Len returns the current number of values in the queue.
// This is an approximation and may be slightly stale.
func (q *LinkedQueue[T]) Len() int {
	popped := q.popped.Load()
	pushed := q.pushed.Load()
	return int(pushed - popped)
}

// Stats returns a snapshot of the queue counters. Safe from any goroutine.
func (q *LinkedQueue[T]) Stats() Stats {
	// Consumer-side counters first: they never run ahead of the producer's.
	s := Stats{
		Popped:     q.popped.Load(),
		EmptyPolls: q.emptyPolls.Load(),
		Freed:      q.freed.Load(),
	}
	s.Pushed = q.pushed.Load()
	s.Allocated = q.allocated.Load()
	return s
}

// Close frees every node still in the chain, sentinel included, and hands
// unconsumed values to the drop hook in FIFO order. Only the first call has
// any effect. Push and Pop panic with ErrClosed afterwards.
//
// Close must not run concurrently with Push or Pop.
func (q *LinkedQueue[T]) Close() {
	q.closeOnce.Do(func() {
		q.closed.Store(true)

		n := q.consume
		for n != nil {
			next := n.next.Load()
			if n.full && q.cfg.drop != nil {
				q.cfg.drop(n.take())
			}
			n.free()
			q.freed.Add(1)
			n = next
		}
		q.consume = nil
		q.insert.Store(nil)
	})
}

// Closed reports whether Close has been called.
func (q *LinkedQueue[T]) Closed() bool {
	return q.closed.Load()
}
