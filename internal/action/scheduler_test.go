package action

import (
	"testing"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRemovesCompletedAfterIteration(t *testing.T) {
	scheduler := NewScheduler()

	early, earlyLog := routineFixture(t, time.Now().Add(5*time.Millisecond), nil)
	late, lateLog := routineFixture(t, time.Now().Add(60*time.Millisecond), nil)
	scheduler.Push(early)
	scheduler.Push(late)

	// Neither routine is due yet.
	scheduler.AttemptRoutines()
	assert.Equal(t, 2, scheduler.Pending())

	time.Sleep(10 * time.Millisecond)
	scheduler.AttemptRoutines()
	assert.Equal(t, 1, scheduler.Pending())
	assert.Equal(t, 1, earlyLog.Len())
	assert.Equal(t, 0, lateLog.Len())

	time.Sleep(60 * time.Millisecond)
	scheduler.AttemptRoutines()
	assert.Equal(t, 0, scheduler.Pending())
	assert.Equal(t, 1, lateLog.Len())
}

func TestSchedulerScheduledSnapshot(t *testing.T) {
	scheduler := NewScheduler()
	routine, _ := routineFixture(t, time.Now().Add(time.Hour), nil)
	scheduler.Push(routine)

	snapshot := scheduler.Scheduled()
	require.Len(t, snapshot, 1)
	assert.Same(t, routine, snapshot[0])

	// Mutating the snapshot does not touch the pending set.
	snapshot[0] = nil
	assert.Equal(t, 1, scheduler.Pending())
}

func TestSchedulerSweepOnEmptySet(t *testing.T) {
	scheduler := NewScheduler()
	assert.NotPanics(t, scheduler.AttemptRoutines)
}

func TestSchedulerKeepsFailingRoutinePending(t *testing.T) {
	scheduler := NewScheduler()

	fail, _ := routineFixture(t, time.Now().Add(-time.Millisecond), func(types.Value) error {
		return assert.AnError
	})
	scheduler.Push(fail)

	scheduler.AttemptRoutines()
	assert.Equal(t, 1, scheduler.Pending())
}
