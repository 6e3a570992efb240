package queue

// Stats is a point-in-time snapshot of a queue's counters.
//
// Counters are updated with atomics by the role that owns them, so a
// snapshot taken from a third goroutine may be slightly stale but never
// shows more pops than pushes.
type Stats struct {
	Pushed     uint64 `json:"pushed"`
	Popped     uint64 `json:"popped"`
	EmptyPolls uint64 `json:"empty_polls"`

	// Allocated counts nodes including the initial sentinel.
	Allocated uint64 `json:"allocated"`
	Freed     uint64 `json:"freed"`
}

// Live returns the number of nodes not yet freed. It is 1 (the sentinel)
// for an open, drained queue and 0 after Close.
func (s Stats) Live() uint64 {
	return s.Allocated - s.Freed
}

// Depth returns the number of values pushed but not yet popped.
func (s Stats) Depth() uint64 {
	return s.Pushed - s.Popped
}
