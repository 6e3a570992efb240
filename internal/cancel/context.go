package cancel

import "context"

// ContextCanceler derives a cancellable context from a parent and polls it.
// Cancelling the parent fires it too; cancelling it leaves the parent alone.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewContext derives a ContextCanceler from parent.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancelCause(parent)
	return &ContextCanceler{ctx: ctx, cancel: cancel}
}

// Done is a non-blocking receive on ctx.Done().
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel cancels the derived context with ErrCancelled.
func (c *ContextCanceler) Cancel() {
	c.cancel(ErrCancelled)
}

// CancelCause cancels the derived context with cause.
func (c *ContextCanceler) CancelCause(cause error) {
	c.cancel(cause)
}

// Context returns the derived context, for handlers that take one.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}

// Cause returns context.Cause of the derived context: the parent's cause
// when the parent was cancelled first.
func (c *ContextCanceler) Cause() error {
	if !c.Done() {
		return nil
	}
	return context.Cause(c.ctx)
}
