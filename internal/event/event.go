// Package event defines the update messages that flow from a producer
// callback to the consumer loop.
package event

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// Event is one update message. Seq is assigned by the producer and is
// strictly increasing, so a consumer can detect loss or reordering.
type Event struct {
	ID   uuid.UUID         `json:"id"`
	Seq  uint64            `json:"seq"`
	Kind string            `json:"kind"`
	At   time.Time         `json:"at"`
	Data map[string]string `json:"data,omitempty"`
}

// New stamps a new event. On entropy failure the event is still usable,
// carries uuid.Nil, and the error is returned.
func New(seq uint64, kind string, data map[string]string) (Event, error) {
	e := Event{
		Seq:  seq,
		Kind: kind,
		At:   time.Now(),
		Data: data,
	}
	id, err := uuid.NewV4()
	if err != nil {
		return e, errors.Wrap(err, "event: generate id")
	}
	e.ID = id
	return e, nil
}

// Age returns how long ago the event was stamped.
func (e Event) Age() time.Duration {
	return time.Since(e.At)
}

func (e Event) String() string {
	return fmt.Sprintf("%s#%d(%s)", e.Kind, e.Seq, e.ID)
}
