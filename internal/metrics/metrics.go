// Package metrics holds the Prometheus collectors for mailboxes.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkq"

// Mailbox is the set of collectors one mailbox updates. A nil *Mailbox is
// valid and records nothing.
type Mailbox struct {
	Sent    prometheus.Counter
	Handled prometheus.Counter
	Failed  prometheus.Counter
	Depth   prometheus.Gauge
	Live    prometheus.Gauge
}

// NewMailbox creates the collectors for the mailbox called name and
// registers them with reg.
func NewMailbox(reg prometheus.Registerer, name string) (*Mailbox, error) {
	labels := prometheus.Labels{"mailbox": name}
	m := &Mailbox{
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "mailbox",
			Name:        "sent_total",
			Help:        "Messages pushed by the producer.",
			ConstLabels: labels,
		}),
		Handled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "mailbox",
			Name:        "handled_total",
			Help:        "Messages the consumer handled successfully.",
			ConstLabels: labels,
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "mailbox",
			Name:        "failed_total",
			Help:        "Messages whose handler returned an error.",
			ConstLabels: labels,
		}),
		Depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "mailbox",
			Name:        "depth",
			Help:        "Messages queued but not yet consumed, as of the last report.",
			ConstLabels: labels,
		}),
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "live_nodes",
			Help:        "Queue nodes allocated and not yet freed, sentinel included.",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.Sent, m.Handled, m.Failed, m.Depth, m.Live} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(err, "metrics: register mailbox %q", name)
		}
	}
	return m, nil
}

// MustNewMailbox is NewMailbox that panics on registration failure.
func MustNewMailbox(reg prometheus.Registerer, name string) *Mailbox {
	m, err := NewMailbox(reg, name)
	if err != nil {
		panic(err)
	}
	return m
}

// IncSent counts one message pushed.
func (m *Mailbox) IncSent() {
	if m != nil {
		m.Sent.Inc()
	}
}

// IncHandled counts one message handled.
func (m *Mailbox) IncHandled() {
	if m != nil {
		m.Handled.Inc()
	}
}

// IncFailed counts one handler failure.
func (m *Mailbox) IncFailed() {
	if m != nil {
		m.Failed.Inc()
	}
}

// Observe publishes the queue gauges.
func (m *Mailbox) Observe(depth, live uint64) {
	if m != nil {
		m.Depth.Set(float64(depth))
		m.Live.Set(float64(live))
	}
}
