package queue

import "github.com/pkg/errors"

var (
	// ErrClosed is the panic value for Push or Pop after Close.
	ErrClosed = errors.New("queue: use of closed queue")

	// ErrInvariant reports a broken insert/remove protocol. It is never a
	// runtime condition to recover from.
	ErrInvariant = errors.New("queue: sentinel invariant violated")

	// ErrConcurrentPush is the panic value when the role guard sees two producers.
	ErrConcurrentPush = errors.New("queue: concurrent Push on SPSC queue - only one producer allowed")

	// ErrConcurrentPop is the panic value when the role guard sees two consumers.
	ErrConcurrentPop = errors.New("queue: concurrent Pop on SPSC queue - only one consumer allowed")
)
