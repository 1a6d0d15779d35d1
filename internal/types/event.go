package types

import "time"

// Event pairs a reading or write with the moment it happened.
//
// Events are created only by device reads/writes and by scheduled
// routine execution; they are never mutated after creation. Timestamps
// are normalized to UTC so they are stable as Log map keys and across
// serialization round-trips.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Value     Value     `json:"value"`
}

// NewEvent builds an Event stamped with the current time.
//
// Time is taken here rather than once per polling cycle so that each
// reading is recorded as accurately as possible.
func NewEvent(value Value) Event {
	return EventAt(time.Now(), value)
}

// EventAt builds an Event with an explicit timestamp. Used by routines,
// which record their scheduled time rather than the execution time.
func EventAt(ts time.Time, value Value) Event {
	return Event{Timestamp: ts.UTC(), Value: value}
}
