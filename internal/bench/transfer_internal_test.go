package bench

import (
	"strings"
	"testing"
	"time"

	"github.com/randomizedcoder/linkq/internal/queue"
)

// swapped delivers 5 and 6 in the wrong order.
func swapped(q *queue.LinkedQueue[int]) func() (int, bool) {
	return func() (int, bool) {
		v, ok := q.Pop()
		switch {
		case ok && v == 5:
			return 6, true
		case ok && v == 6:
			return 5, true
		}
		return v, ok
	}
}

func TestTransfer_ReorderReportedAfterDrain(t *testing.T) {
	q := queue.New[int](queue.WithChecks[int](queue.CheckOff))
	closed := false

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = transfer("faulty", 10_000, handoff{
			push:  q.Push,
			pop:   swapped(q),
			close: func() { closed = true; q.Close() },
		})
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("expected transfer to return after a reorder")
	}

	if err == nil || !strings.Contains(err.Error(), "expected 5, got 6") {
		t.Errorf("expected the first reorder reported, got %v", err)
	}
	if !closed {
		t.Error("expected the queue closed once the producer finished")
	}
	if s := q.Stats(); s.Pushed != 10_000 || s.Popped != 10_000 || s.Live() != 0 {
		t.Errorf("expected every value pushed, popped and freed, got %+v", s)
	}
}

func TestTransfer_BlockingChannelReorder(t *testing.T) {
	ch := make(chan int)
	done := make(chan error, 1)
	go func() {
		_, err := transfer("faulty channel", 100, handoff{
			push: func(v int) { ch <- v },
			pop: func() (int, bool) {
				v := <-ch
				if v == 0 {
					return 1, true
				}
				return v, true
			},
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected a reorder error")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("expected transfer to return instead of leaving the producer blocked")
	}
}
