package queue_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/randomizedcoder/linkq/internal/queue"
)

func newChecked[T any](opts ...queue.Option[T]) *queue.LinkedQueue[T] {
	opts = append([]queue.Option[T]{
		queue.WithChecks[T](queue.CheckPanic),
		queue.WithRoleGuards[T](),
	}, opts...)
	return queue.New[T](opts...)
}

func expectPop[T comparable](t *testing.T, q queue.Consumer[T], want T) {
	t.Helper()
	got, ok := q.Pop()
	if !ok {
		t.Fatalf("expected Pop() = %v, got empty", want)
	}
	if got != want {
		t.Fatalf("FIFO violation: expected %v, got %v", want, got)
	}
}

func expectEmpty[T any](t *testing.T, q queue.Consumer[T]) {
	t.Helper()
	if v, ok := q.Pop(); ok {
		t.Fatalf("expected Pop() = empty, got %v", v)
	}
}

func TestLinkedQueue_FreshIsEmpty(t *testing.T) {
	q := newChecked[int]()
	defer q.Close()

	expectEmpty[int](t, q)
	if !q.Empty() {
		t.Error("expected Empty() = true on fresh queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected Len() = 0, got %d", q.Len())
	}
}

// Scenario A: interleaved pushes and pops keep FIFO order.
func TestLinkedQueue_Interleaved(t *testing.T) {
	q := newChecked[int]()
	defer q.Close()

	q.Push(0)
	q.Push(1)
	q.Push(2)
	expectPop(t, q, 0)
	expectPop(t, q, 1)
	q.Push(3)
	expectPop(t, q, 2)
	expectPop(t, q, 3)
	expectEmpty[int](t, q)
}

// Scenario B: repeated polling of an empty queue changes nothing but the
// empty-poll counter.
func TestLinkedQueue_RepeatedEmptyPolls(t *testing.T) {
	q := newChecked[string]()
	defer q.Close()

	before := q.Stats()
	for i := 0; i < 1000; i++ {
		expectEmpty[string](t, q)
	}
	after := q.Stats()

	if after.EmptyPolls != before.EmptyPolls+1000 {
		t.Errorf("expected EmptyPolls = %d, got %d", before.EmptyPolls+1000, after.EmptyPolls)
	}
	after.EmptyPolls = before.EmptyPolls
	if after != before {
		t.Errorf("expected stats unchanged, before %+v, after %+v", before, after)
	}
}

func TestLinkedQueue_FIFO(t *testing.T) {
	q := newChecked[int]()
	defer q.Close()

	const n = 100
	for i := 0; i < n; i++ {
		q.Push(i)
	}
	if q.Len() != n {
		t.Errorf("expected Len() = %d, got %d", n, q.Len())
	}
	for i := 0; i < n; i++ {
		expectPop(t, q, i)
	}
	expectEmpty[int](t, q)
}

func TestLinkedQueue_DrainThenRefill(t *testing.T) {
	q := newChecked[int]()
	defer q.Close()

	for round := 0; round < 3; round++ {
		for i := 0; i < 10; i++ {
			q.Push(round*10 + i)
		}
		for i := 0; i < 10; i++ {
			expectPop(t, q, round*10+i)
		}
		expectEmpty[int](t, q)
		expectEmpty[int](t, q)
	}

	q.Push(99)
	expectPop(t, q, 99)
}

func TestLinkedQueue_ZeroValues(t *testing.T) {
	q := newChecked[*int]()
	defer q.Close()

	q.Push(nil)
	got, ok := q.Pop()
	if !ok {
		t.Fatal("expected Pop() = true for a queued nil pointer")
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	expectEmpty[*int](t, q)
}

func TestLinkedQueue_NodeAccounting(t *testing.T) {
	q := newChecked[int]()

	s := q.Stats()
	if s.Allocated != 1 || s.Live() != 1 {
		t.Fatalf("expected only the sentinel allocated, got %+v", s)
	}

	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	s = q.Stats()
	if s.Allocated != 6 || s.Live() != 6 {
		t.Errorf("expected 6 live nodes after 5 pushes, got %+v", s)
	}

	for i := 0; i < 5; i++ {
		expectPop(t, q, i)
	}
	s = q.Stats()
	if s.Freed != 5 || s.Live() != 1 {
		t.Errorf("expected only the sentinel live after drain, got %+v", s)
	}

	q.Close()
	s = q.Stats()
	if s.Live() != 0 {
		t.Errorf("expected 0 live nodes after Close, got %d", s.Live())
	}
}

func TestLinkedQueue_CloseReleasesUnconsumed(t *testing.T) {
	var dropped []int
	q := newChecked[int](queue.WithDropHook(func(v int) {
		dropped = append(dropped, v)
	}))

	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	expectPop(t, q, 0)
	expectPop(t, q, 1)

	q.Close()

	if len(dropped) != 8 {
		t.Fatalf("expected 8 dropped values, got %d", len(dropped))
	}
	for i, v := range dropped {
		if v != i+2 {
			t.Errorf("expected dropped[%d] = %d, got %d", i, i+2, v)
		}
	}

	s := q.Stats()
	if s.Allocated != 11 || s.Freed != 11 {
		t.Errorf("expected 11 nodes allocated and freed, got %+v", s)
	}

	// Second Close is a no-op.
	q.Close()
	if len(dropped) != 8 {
		t.Errorf("expected drop hook not to run again, got %d values", len(dropped))
	}
	if got := q.Stats().Freed; got != 11 {
		t.Errorf("expected Freed = 11 after second Close, got %d", got)
	}
}

func TestLinkedQueue_UseAfterClosePanics(t *testing.T) {
	tests := []struct {
		name string
		op   func(q *queue.LinkedQueue[int])
	}{
		{"Push", func(q *queue.LinkedQueue[int]) { q.Push(1) }},
		{"Pop", func(q *queue.LinkedQueue[int]) { q.Pop() }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := newChecked[int]()
			q.Close()
			if !q.Closed() {
				t.Fatal("expected Closed() = true")
			}
			if !q.Empty() {
				t.Error("expected Empty() = true after Close")
			}

			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, queue.ErrClosed) {
					t.Errorf("expected panic with ErrClosed, got %v", r)
				}
			}()
			tc.op(q)
		})
	}
}

func TestCheckMode_String(t *testing.T) {
	tests := []struct {
		mode queue.CheckMode
		want string
	}{
		{queue.CheckLog, "log"},
		{queue.CheckPanic, "panic"},
		{queue.CheckOff, "off"},
		{queue.CheckMode(42), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.mode.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

// Test that LinkedQueue satisfies the role interfaces
func TestQueueInterface(t *testing.T) {
	q := queue.New[int]()
	defer q.Close()

	var p queue.Producer[int] = q
	var c queue.Consumer[int] = q

	p.Push(42)
	expectPop(t, c, 42)
	expectEmpty[int](t, c)
}
