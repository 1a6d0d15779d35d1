package action

import (
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
)

// Action is the strategy evaluated against every event an input
// produces. Implementations may write to an output device immediately
// or schedule a routine for later execution.
type Action interface {
	Name() string

	// Evaluate handles one incoming event. Failures are not caught
	// by the publisher: control-logic bugs should not be silently
	// swallowed.
	Evaluate(event types.Event)
}

// Actuator is the slice of an output device that actions need: an
// immediate write, and construction of a deferred write without
// exposing the device's command or log internals.
type Actuator interface {
	Metadata() types.DeviceMetadata
	Write(value types.Value) (types.Event, error)
	Schedule(value types.Value, at time.Time) (*Routine, error)
}
