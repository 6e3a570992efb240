// Package queue provides an unbounded SPSC linked-list queue.
//
// LinkedQueue hands values from one producer to one consumer without a
// mutex. Every Push allocates exactly one node; every Pop retires exactly
// one node. The consumer never blocks: an empty queue is reported through
// the boolean result of Pop and is cheap enough to poll in a tight loop.
//
// # Safety (IMPORTANT)
//
// LinkedQueue is a Single-Producer Single-Consumer (SPSC) queue.
// It is NOT safe for multiple goroutines to call Push() or Pop() concurrently.
//
// Correct usage:
//   - Exactly ONE goroutine (or callback context) calls Push()
//   - Exactly ONE goroutine (or cooperative task) calls Pop()
//   - These may be the same goroutine or different goroutines
//   - Close() is called once, after both roles have stopped
//
// WithRoleGuards enables runtime guards that panic on concurrent Push or
// concurrent Pop. They catch misuse early at the cost of two CAS per call.
package queue

// Producer is the insert side of a queue.
//
// Push never blocks and never fails; the queue has no capacity limit.
type Producer[T any] interface {
	Push(T)
}

// Consumer is the remove side of a queue.
type Consumer[T any] interface {
	// Pop removes and returns the oldest item.
	// Returns false if the queue is empty (non-blocking).
	Pop() (T, bool)
}

// Queue is a single-producer single-consumer queue.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
}

// Bounded is a fixed-capacity SPSC queue. Push reports false when full.
type Bounded[T any] interface {
	Push(T) bool
	Consumer[T]
	Len() int
	Cap() int
}

var (
	_ Queue[int]   = (*LinkedQueue[int])(nil)
	_ Bounded[int] = (*RingBuffer[int])(nil)
	_ Bounded[int] = (*ChannelQueue[int])(nil)
)
