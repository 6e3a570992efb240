package queue

import "sync/atomic"

// node is one link of the chain.
//
// next is written once by the producer (nil to non-nil) and read by the
// consumer. value and full are written by the producer before the node is
// published and afterwards only by the consumer.
type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
	full  bool
}

func newNode[T any](v T, full bool) *node[T] {
	return &node[T]{value: v, full: full}
}

// take moves the payload out, leaving the node payload-free.
func (n *node[T]) take() T {
	v := n.value
	var zero T
	n.value = zero
	n.full = false
	return v
}

// free drops every reference held by a retired node so it cannot keep
// its successor or payload reachable.
func (n *node[T]) free() {
	var zero T
	n.value = zero
	n.full = false
	n.next.Store(nil)
}
