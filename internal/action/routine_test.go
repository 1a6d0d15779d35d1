package action

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routineFixture(t *testing.T, when time.Time, write WriteFunc) (*Routine, *chronicle.Log) {
	t.Helper()

	metadata := types.NewMetadata("pump", 5, types.KindUnassigned, types.DirectionOutput)
	log := chronicle.NewLog(metadata)
	registry := chronicle.NewRegistry()
	ref := chronicle.NewRef(registry, registry.Add(log))

	return NewRoutine(when, metadata, types.Binary(false), ref, NewWriteCommand(write), nil), log
}

func TestRoutineNotDueDoesNothing(t *testing.T) {
	var calls atomic.Int32
	routine, log := routineFixture(t, time.Now().Add(time.Hour), func(types.Value) error {
		calls.Add(1)
		return nil
	})

	assert.False(t, routine.Attempt())
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, log.Len())
}

func TestRoutineDueExecutesAndRecords(t *testing.T) {
	when := time.Now().Add(-time.Millisecond)
	var calls atomic.Int32
	routine, log := routineFixture(t, when, func(types.Value) error {
		calls.Add(1)
		return nil
	})

	assert.True(t, routine.Attempt())
	assert.Equal(t, int32(1), calls.Load())

	events := log.Events()
	require.Len(t, events, 1)
	// The event carries the scheduled time, not the execution time.
	assert.True(t, events[0].Timestamp.Equal(when.UTC()))
	assert.True(t, types.Binary(false).Equal(events[0].Value))
}

func TestRoutineLostLogIsDroppedWithoutActuating(t *testing.T) {
	metadata := types.NewMetadata("pump", 5, types.KindUnassigned, types.DirectionOutput)
	registry := chronicle.NewRegistry()
	handle := registry.Add(chronicle.NewLog(metadata))
	ref := chronicle.NewRef(registry, handle)

	var calls atomic.Int32
	routine := NewRoutine(time.Now().Add(-time.Millisecond), metadata, types.Binary(false), ref,
		NewWriteCommand(func(types.Value) error {
			calls.Add(1)
			return nil
		}), nil)

	// Device teardown removes the log before the routine fires.
	registry.Remove(handle)

	assert.True(t, routine.Attempt(), "lost routine must be dropped, not retried")
	assert.Equal(t, int32(0), calls.Load(), "lost routine must not actuate")
}

func TestRoutineTransientFailureRetries(t *testing.T) {
	var calls atomic.Int32
	routine, log := routineFixture(t, time.Now().Add(-time.Millisecond), func(types.Value) error {
		if calls.Add(1) == 1 {
			return errors.New("bus busy")
		}
		return nil
	})

	assert.False(t, routine.Attempt(), "transient failure stays pending")
	assert.True(t, routine.Attempt(), "second attempt succeeds")
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, log.Len())
}

func TestRoutineMetadataIsACopy(t *testing.T) {
	routine, _ := routineFixture(t, time.Now(), nil)
	assert.Equal(t, "pump", routine.Metadata().Name)
	assert.NotEqual(t, [16]byte{}, [16]byte(routine.ID()))
}
