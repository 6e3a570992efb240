// Package pump drives a mailbox the way a UI event callback would: one
// producer goroutine emits sequenced events, optionally rate limited, and
// the mailbox consumer verifies that each arrives exactly once and in order.
package pump

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/gosuri/uilive"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/randomizedcoder/linkq/internal/config"
	"github.com/randomizedcoder/linkq/internal/event"
	"github.com/randomizedcoder/linkq/internal/mailbox"
	"github.com/randomizedcoder/linkq/internal/metrics"
)

const (
	mailboxName     = "pump"
	progressRefresh = 100 * time.Millisecond
)

// Summary describes a finished run.
type Summary struct {
	Sent        uint64        `json:"sent"`
	Handled     uint64        `json:"handled"`
	Elapsed     time.Duration `json:"elapsed"`
	MeanAge     time.Duration `json:"mean_age"`
	MaxAge      time.Duration `json:"max_age"`
	Interrupted bool          `json:"interrupted"`
	Mailbox     mailbox.Stats `json:"mailbox"`
}

// Pump owns one mailbox and its producer.
type Pump struct {
	cfg config.Pump
	log logrus.FieldLogger
	mb  *mailbox.Mailbox[event.Event]
	seq *event.Sequencer

	sent   atomic.Uint64
	ageSum atomic.Int64
	ageMax atomic.Int64
}

// New builds a pump. m may be nil.
func New(cfg config.Pump, log logrus.FieldLogger, m *metrics.Mailbox) *Pump {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Pump{
		cfg: cfg,
		log: log,
		seq: event.NewSequencer(1),
	}
	p.mb = mailbox.New[event.Event](p.handle,
		mailbox.WithName[event.Event](mailboxName),
		mailbox.WithLogger[event.Event](log),
		mailbox.WithMetrics[event.Event](m),
		mailbox.WithReportInterval[event.Event](cfg.ReportInterval),
		mailbox.WithReportEvery[event.Event](cfg.ReportEvery),
		mailbox.WithStopOnError[event.Event](),
	)
	return p
}

// Stats returns the mailbox snapshot. Safe from any goroutine.
func (p *Pump) Stats() mailbox.Stats {
	return p.mb.Stats()
}

// handle runs on the consumer goroutine only.
func (p *Pump) handle(ctx context.Context, e event.Event) error {
	if err := p.seq.Observe(e); err != nil {
		return err
	}

	age := int64(e.Age())
	p.ageSum.Add(age)
	if age > p.ageMax.Load() {
		p.ageMax.Store(age)
	}

	if p.cfg.RenderDelay > 0 {
		t := time.NewTimer(p.cfg.RenderDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// Run starts the consumer, produces until the configured event count or
// duration is reached or ctx is cancelled, then stops the mailbox, waits
// for the consumer to drain it and releases it.
//
// If progress is non-nil a live status line is rendered to it.
// Cancellation of ctx is reported through Summary.Interrupted, not as an
// error.
func (p *Pump) Run(ctx context.Context, progress io.Writer) (Summary, error) {
	consumed := make(chan error, 1)
	go func() {
		consumed <- p.mb.Run(ctx)
	}()

	var stopProgress func()
	if progress != nil {
		stopProgress = p.startProgress(progress)
	}

	start := time.Now()
	produceErr := p.produce(ctx)
	p.mb.Stop()
	consumeErr := <-consumed
	elapsed := time.Since(start)

	if stopProgress != nil {
		stopProgress()
	}

	if err := p.mb.Close(); err != nil {
		return Summary{}, errors.Wrap(err, "pump: close mailbox")
	}

	s := p.summary(elapsed)
	s.Interrupted = ctx.Err() != nil

	switch {
	case consumeErr != nil:
		return s, errors.Wrap(consumeErr, "pump: consumer")
	case produceErr != nil && ctx.Err() == nil:
		return s, errors.Wrap(produceErr, "pump: producer")
	}
	return s, nil
}

func (p *Pump) limiter() *rate.Limiter {
	if p.cfg.Rate <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := p.cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(p.cfg.Rate), burst)
}

// produce is the single producer. It returns nil when the event count or
// duration is reached, or when the consumer has stopped accepting.
func (p *Pump) produce(ctx context.Context) error {
	lim := p.limiter()

	var deadline <-chan time.Time
	if p.cfg.Duration > 0 {
		t := time.NewTimer(p.cfg.Duration)
		defer t.Stop()
		deadline = t.C
	}

	for seq := uint64(1); p.cfg.Events == 0 || seq <= uint64(p.cfg.Events); seq++ {
		select {
		case <-deadline:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := lim.Wait(ctx); err != nil {
			return err
		}

		e, err := event.New(seq, "update", nil)
		if err != nil {
			p.log.WithError(err).WithField("seq", seq).Warn("event without id")
		}
		if err := p.mb.Send(e); err != nil {
			if errors.Is(err, mailbox.ErrStopped) {
				p.log.WithField("seq", seq).Debug("consumer stopped, producer exiting")
				return nil
			}
			return err
		}
		p.sent.Add(1)
	}
	return nil
}

func (p *Pump) startProgress(out io.Writer) func() {
	w := uilive.New()
	w.Out = out
	w.Start()

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		t := time.NewTicker(progressRefresh)
		defer t.Stop()
		for {
			p.writeProgress(w)
			select {
			case <-done:
				return
			case <-t.C:
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		p.writeProgress(w)
		w.Stop()
	}
}

func (p *Pump) writeProgress(w io.Writer) {
	s := p.mb.Stats()
	fmt.Fprintf(w, "sent %d  handled %d  depth %d  live nodes %d\n",
		p.sent.Load(), s.Handled, s.Queue.Depth(), s.Queue.Live())
}

func (p *Pump) summary(elapsed time.Duration) Summary {
	s := Summary{
		Sent:    p.sent.Load(),
		Handled: p.seq.Seen(),
		Elapsed: elapsed,
		MaxAge:  time.Duration(p.ageMax.Load()),
		Mailbox: p.mb.Stats(),
	}
	if s.Handled > 0 {
		s.MeanAge = time.Duration(p.ageSum.Load() / int64(s.Handled))
	}
	return s
}

// Print writes a human readable report.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\nResults:")
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  Sent:        %d\n", s.Sent)
	fmt.Fprintf(w, "  Handled:     %d\n", s.Handled)
	fmt.Fprintf(w, "  Elapsed:     %v\n", s.Elapsed)
	if s.Elapsed > 0 {
		fmt.Fprintf(w, "  Throughput:  %.0f events/sec\n", float64(s.Handled)/s.Elapsed.Seconds())
	}
	fmt.Fprintf(w, "  Mean age:    %v\n", s.MeanAge)
	fmt.Fprintf(w, "  Max age:     %v\n", s.MaxAge)
	fmt.Fprintf(w, "  Empty polls: %d\n", s.Mailbox.Queue.EmptyPolls)
	fmt.Fprintf(w, "  Live nodes:  %d\n", s.Mailbox.Queue.Live())
	if s.Interrupted {
		fmt.Fprintln(w, "  (interrupted)")
	}
}
