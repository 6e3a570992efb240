// Package mailbox runs a consumer loop over an SPSC LinkedQueue.
//
// A Mailbox decouples a synchronous producer, typically an event callback
// that must not block, from an asynchronous consumer that handles each
// message in order. The producer calls Send; exactly one goroutine calls
// Run. When the queue is empty the consumer parks on a one-slot wake
// channel instead of spinning.
package mailbox

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/linkq/internal/cancel"
	"github.com/randomizedcoder/linkq/internal/queue"
	"github.com/randomizedcoder/linkq/internal/tick"
)

var (
	// ErrStopped is returned by Send after Stop, or once Run has returned.
	ErrStopped = errors.New("mailbox: stopped")

	// ErrRunning is returned by a second Run, or by Close while Run is active.
	ErrRunning = errors.New("mailbox: consumer already running")
)

// Handler consumes one message. A returned error is logged and counted;
// with WithStopOnError it also ends Run.
type Handler[T any] func(ctx context.Context, v T) error

// Stats is a snapshot of a mailbox.
type Stats struct {
	Name    string      `json:"name"`
	Queue   queue.Stats `json:"queue"`
	Handled uint64      `json:"handled"`
	Failed  uint64      `json:"failed"`
	Running bool        `json:"running"`
	Stopped bool        `json:"stopped"`
	Cause   string      `json:"cause,omitempty"`
}

// Mailbox pairs a LinkedQueue with the consumer loop that drains it.
type Mailbox[T any] struct {
	q       *queue.LinkedQueue[T]
	handler Handler[T]
	wake    chan struct{}
	done    chan struct{}

	stop    *cancel.Signal
	running atomic.Bool
	exited  atomic.Bool

	handled atomic.Uint64
	failed  atomic.Uint64

	cfg config[T]
	log logrus.FieldLogger
}

// New creates a Mailbox that hands every message to h.
func New[T any](h Handler[T], opts ...Option[T]) *Mailbox[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log.WithField("mailbox", cfg.name)

	qopts := append([]queue.Option[T]{queue.WithLogger[T](log)}, cfg.queueOpts...)
	return &Mailbox[T]{
		q:       queue.New[T](qopts...),
		handler: h,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stop:    cancel.NewSignal(),
		cfg:     cfg,
		log:     log,
	}
}

// Send queues v for the consumer and never blocks.
//
// SPSC CONTRACT: Only ONE goroutine may call Send().
func (m *Mailbox[T]) Send(v T) error {
	if m.stop.Done() {
		return ErrStopped
	}
	m.q.Push(v)
	m.cfg.metrics.IncSent()
	m.notify()
	return nil
}

func (m *Mailbox[T]) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Stop asks Run to finish. Messages already queued are still handled.
// Safe to call from any goroutine, any number of times.
func (m *Mailbox[T]) Stop() {
	if m.stop.Fire(ErrStopped) {
		m.log.Debug("mailbox stop requested")
	}
	m.notify()
}

// Done is closed when Run returns.
func (m *Mailbox[T]) Done() <-chan struct{} {
	return m.done
}

// Run is the consumer loop. It handles messages in Send order until ctx is
// cancelled or Stop is called, then handles whatever is still queued with
// a context detached from ctx's cancellation and returns.
//
// Run returns nil on a clean shutdown, ErrRunning if called twice, or the
// first handler error under WithStopOnError.
func (m *Mailbox[T]) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer func() {
		m.stop.Fire(ErrStopped)
		m.exited.Store(true)
		close(m.done)
	}()

	ctxStop := cancel.NewContext(ctx)
	defer ctxStop.Cancel()
	stop := cancel.Any(m.stop, ctxStop)

	report := tick.New(m.cfg.interval, m.cfg.every)

	m.log.WithField("report_interval", m.cfg.interval).Info("mailbox consumer started")

	for !stop.Done() {
		if err := m.drain(ctxStop.Context(), stop, report); err != nil {
			m.stop.Fire(err)
			m.report()
			return err
		}
		if stop.Done() {
			break
		}
		select {
		case <-m.wake:
		case <-ctx.Done():
		}
	}

	// Later Sends must fail: nothing will drain them once this returns.
	m.stop.Fire(stop.Cause())

	err := m.drain(context.WithoutCancel(ctx), nil, report)
	m.report()
	m.log.WithField("cause", m.stop.Cause()).Info("mailbox consumer stopped")
	return err
}

// drain handles messages until the queue is empty or until is done.
func (m *Mailbox[T]) drain(ctx context.Context, until cancel.Canceler, report *tick.Schedule) error {
	for until == nil || !until.Done() {
		v, ok := m.q.Pop()
		if !ok {
			return nil
		}
		if err := m.dispatch(ctx, v); err != nil {
			return err
		}
		if report.Tick() {
			m.report()
		}
	}
	return nil
}

func (m *Mailbox[T]) dispatch(ctx context.Context, v T) error {
	err := m.handler(ctx, v)
	if err == nil {
		m.handled.Add(1)
		m.cfg.metrics.IncHandled()
		return nil
	}

	m.failed.Add(1)
	m.cfg.metrics.IncFailed()
	m.log.WithError(err).Warn("mailbox handler failed")
	if m.cfg.stopOnError {
		return errors.Wrap(err, "mailbox: handler")
	}
	return nil
}

func (m *Mailbox[T]) report() {
	s := m.q.Stats()
	m.cfg.metrics.Observe(s.Depth(), s.Live())
	m.log.WithFields(logrus.Fields{
		"depth":       s.Depth(),
		"pushed":      s.Pushed,
		"popped":      s.Popped,
		"empty_polls": s.EmptyPolls,
		"live_nodes":  s.Live(),
		"handled":     m.handled.Load(),
		"failed":      m.failed.Load(),
	}).Info("mailbox report")
}

// Stats returns a snapshot. Safe from any goroutine.
func (m *Mailbox[T]) Stats() Stats {
	var cause string
	if err := m.stop.Cause(); err != nil {
		cause = err.Error()
	}
	return Stats{
		Name:    m.cfg.name,
		Queue:   m.q.Stats(),
		Handled: m.handled.Load(),
		Failed:  m.failed.Load(),
		Running: m.running.Load() && !m.exited.Load(),
		Stopped: m.stop.Done(),
		Cause:   cause,
	}
}

// Close releases the queue. Messages that were never handled go to the
// queue's drop hook. Call it after Run has returned and the producer has
// stopped sending; it returns ErrRunning while Run is still active.
func (m *Mailbox[T]) Close() error {
	if m.running.Load() && !m.exited.Load() {
		return ErrRunning
	}
	m.stop.Fire(ErrStopped)
	if left := m.q.Len(); left > 0 {
		m.log.WithField("unhandled", left).Warn("closing mailbox with unhandled messages")
	}
	m.q.Close()
	return nil
}
