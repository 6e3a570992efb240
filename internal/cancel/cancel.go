// Package cancel provides stop signals for polling consumer loops.
//
// A consumer that drains a queue checks its Canceler between messages and,
// once it is done, asks it why. Two implementations:
//   - Signal: an atomic flag carrying the first stop cause
//   - ContextCanceler: a context.Context with cancellation cause
//
// Any folds several of them into one Done() for the loop to poll.
package cancel

import "github.com/pkg/errors"

// ErrCancelled is the cause recorded by a plain Cancel.
var ErrCancelled = errors.New("cancel: cancelled")

// Canceler is a stop signal safe for concurrent use.
type Canceler interface {
	// Done reports whether the signal has fired.
	Done() bool
	// Cancel fires the signal with ErrCancelled, unless it already fired.
	Cancel()
	// Cause returns why the signal fired, or nil while it has not.
	Cause() error
}
