package action

import (
	"sync"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
)

// fakeActuator records writes and schedule requests in place of a real
// output device.
type fakeActuator struct {
	mu        sync.Mutex
	metadata  types.DeviceMetadata
	writes    []types.Value
	scheduled []time.Time
	writeErr  error
}

func newFakeActuator(name string) *fakeActuator {
	return &fakeActuator{
		metadata: types.NewMetadata(name, 99, types.KindUnassigned, types.DirectionOutput),
	}
}

func (f *fakeActuator) Metadata() types.DeviceMetadata {
	return f.metadata
}

func (f *fakeActuator) Write(value types.Value) (types.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return types.Event{}, f.writeErr
	}
	f.writes = append(f.writes, value)
	return types.NewEvent(value), nil
}

func (f *fakeActuator) Schedule(value types.Value, at time.Time) (*Routine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, at)
	return NewRoutine(at, f.metadata, value, chronicle.Ref{}, NewWriteCommand(nil), nil), nil
}

func (f *fakeActuator) lastWrite() (types.Value, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return types.Value{}, false
	}
	return f.writes[len(f.writes)-1], true
}

// recordingAction collects the events it was evaluated against.
type recordingAction struct {
	name   string
	events []types.Event
}

func (r *recordingAction) Name() string { return r.name }

func (r *recordingAction) Evaluate(event types.Event) {
	r.events = append(r.events, event)
}
