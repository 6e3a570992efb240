// Package bench measures one-producer/one-consumer handoff throughput.
//
// Every Runner moves the integers 0..n-1 from a producer goroutine to a
// consumer goroutine, fails if they arrive out of order, and returns the
// elapsed wall time. Four handoffs are compared:
//   - LinkedQueue: the unbounded SPSC linked queue
//   - RingBuffer: the bounded SPSC ring of the configured size
//   - Channel: a buffered channel of the configured size
//   - ShardedRing: go-lock-free-ring with a single shard
package bench

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/pkg/errors"
	ring "github.com/randomizedcoder/go-lock-free-ring"
	"gonum.org/v1/gonum/stat"

	"github.com/randomizedcoder/linkq/internal/queue"
)

// Runner transfers n values and returns how long the transfer took.
type Runner func(n int) (time.Duration, error)

// Case is one named handoff under test.
type Case struct {
	Name string
	Run  Runner
}

// Cases returns the standard comparison set. size bounds the baselines
// that need a capacity; the linked queue is unbounded.
func Cases(size int) []Case {
	return []Case{
		{"LinkedQueue", Linked()},
		{"RingBuffer", RingBuffer(size)},
		{"Channel", Channel(size)},
		{"ShardedRing", ShardedRing(size)},
	}
}

// handoff adapts one queue to transfer. push blocks until v is accepted;
// pop never blocks except where noted.
type handoff struct {
	push  func(v int)
	pop   func() (int, bool)
	close func()
}

// transfer pushes 0..n-1 from a producer goroutine and pops them on the
// calling goroutine. The consumer always takes all n values, so the
// producer finishes even after a reorder; the first reorder is returned
// once the producer is done and the queue is closed.
func transfer(name string, n int, h handoff) (time.Duration, error) {
	pushed := make(chan struct{})

	start := time.Now()
	go func() {
		defer close(pushed)
		for i := 0; i < n; i++ {
			h.push(i)
		}
	}()

	var err error
	for got := 0; got < n; {
		v, ok := h.pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if err == nil && v != got {
			err = errors.Errorf("bench: %s out of order: expected %d, got %d", name, got, v)
		}
		got++
	}
	elapsed := time.Since(start)

	<-pushed
	if h.close != nil {
		h.close()
	}
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}

// Linked runs the transfer through a LinkedQueue with checks off.
func Linked() Runner {
	return func(n int) (time.Duration, error) {
		q := queue.New[int](queue.WithChecks[int](queue.CheckOff))
		return transfer("linked queue", n, handoff{
			push:  q.Push,
			pop:   q.Pop,
			close: q.Close,
		})
	}
}

// RingBuffer runs the transfer through the bounded SPSC RingBuffer. The
// producer spins while the ring is full.
func RingBuffer(size int) Runner {
	return func(n int) (time.Duration, error) {
		q := queue.NewRingBuffer[int](size)
		return transfer("ring buffer", n, handoff{
			push: func(v int) {
				for !q.Push(v) {
					runtime.Gosched()
				}
			},
			pop:   q.Pop,
			close: q.Close,
		})
	}
}

// Channel runs the transfer through a buffered channel. Both ends block.
func Channel(size int) Runner {
	return func(n int) (time.Duration, error) {
		ch := make(chan int, size)
		return transfer("channel", n, handoff{
			push: func(v int) { ch <- v },
			pop: func() (int, bool) {
				v, ok := <-ch
				return v, ok
			},
			close: func() { close(ch) },
		})
	}
}

// ShardedRing runs the transfer through a one-shard go-lock-free-ring.
func ShardedRing(size int) Runner {
	return func(n int) (time.Duration, error) {
		r, err := ring.NewShardedRing(uint64(size), 1)
		if err != nil {
			return 0, errors.Wrap(err, "bench: sharded ring")
		}
		return transfer("sharded ring", n, handoff{
			push: func(v int) {
				for !r.Write(0, v) {
					runtime.Gosched()
				}
			},
			pop: func() (int, bool) {
				item, ok := r.TryRead()
				if !ok {
					return 0, false
				}
				v, isInt := item.(int)
				if !isInt {
					return -1, true
				}
				return v, true
			},
		})
	}
}

// Result summarises repeated runs of one case.
type Result struct {
	Name    string
	NsPerOp []float64
	Mean    float64
	StdDev  float64
}

// MopsPerSec converts the mean to millions of transfers per second.
func (r Result) MopsPerSec() float64 {
	if r.Mean == 0 {
		return 0
	}
	return 1000 / r.Mean
}

// Measure runs c the given number of times with n transfers each.
func Measure(c Case, n, runs int) (Result, error) {
	res := Result{Name: c.Name, NsPerOp: make([]float64, 0, runs)}
	for i := 0; i < runs; i++ {
		d, err := c.Run(n)
		if err != nil {
			return res, errors.Wrapf(err, "bench: %s run %d", c.Name, i)
		}
		res.NsPerOp = append(res.NsPerOp, float64(d.Nanoseconds())/float64(n))
	}
	res.Mean, res.StdDev = stat.MeanStdDev(res.NsPerOp, nil)
	return res, nil
}

// Report writes a results table. The first result is the baseline for
// the speedup column.
func Report(w io.Writer, results []Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "\nResults (producer -> consumer handoff):\n")
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────────────")
	baseline := results[0].Mean
	for _, r := range results {
		speedup := 0.0
		if r.Mean > 0 {
			speedup = baseline / r.Mean
		}
		fmt.Fprintf(w, "  %-14s %8.2f ns/op  ±%6.2f  %6.2fx  %8.2f M/s\n",
			r.Name, r.Mean, r.StdDev, speedup, r.MopsPerSec())
	}
}
