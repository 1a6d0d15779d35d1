package group

import (
	"errors"
	"testing"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/device"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput(t *testing.T, name string, id types.ID, read action.ReadFunc) *device.Input {
	t.Helper()
	cmd := action.NewReadCommand(read)
	in, err := device.BuildInput(name, id, types.KindUnassigned, device.InputOptions{
		Command: &cmd,
		WithLog: true,
	}, nil)
	require.NoError(t, err)
	return in
}

func newTestOutput(t *testing.T, name string, id types.ID) *device.Output {
	t.Helper()
	cmd := action.NewWriteCommand(func(types.Value) error { return nil })
	out, err := device.BuildOutput(name, id, types.KindUnassigned, device.OutputOptions{
		Command: &cmd,
		WithLog: true,
	}, nil)
	require.NoError(t, err)
	return out
}

func TestGroupRejectsDuplicateIDs(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	require.NoError(t, g.PushInput(newTestInput(t, "a", 1, nil)))
	assert.ErrorIs(t, g.PushInput(newTestInput(t, "b", 1, nil)), types.ErrDuplicateID)

	require.NoError(t, g.PushOutput(newTestOutput(t, "c", 1)))
	assert.ErrorIs(t, g.PushOutput(newTestOutput(t, "d", 1)), types.ErrDuplicateID)
}

func TestGroupDevicesOrderedByID(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	for _, id := range []types.ID{3, 1, 2} {
		require.NoError(t, g.PushInput(newTestInput(t, "in", id, nil)))
	}

	inputs := g.Inputs()
	require.Len(t, inputs, 3)
	assert.Equal(t, types.ID(1), inputs[0].ID())
	assert.Equal(t, types.ID(2), inputs[1].ID())
	assert.Equal(t, types.ID(3), inputs[2].ID())
}

func TestGroupPollGatedByInterval(t *testing.T) {
	g := New("test", time.Hour, t.TempDir(), nil)
	var reads int
	require.NoError(t, g.PushInput(newTestInput(t, "probe", 1, func() types.Value {
		reads++
		return types.Float(1)
	})))

	// New groups are immediately due.
	_, executed := g.Poll()
	assert.True(t, executed)
	assert.Equal(t, 1, reads)

	// The next cycle is an hour away.
	_, executed = g.Poll()
	assert.False(t, executed)
	assert.Equal(t, 1, reads)
}

func TestGroupPollCollectsErrorsWithoutHalting(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	// No command: every read fails.
	bare := device.NewInput("bare", 1, types.KindUnassigned, nil)
	require.NoError(t, g.PushInput(bare))

	var reads int
	require.NoError(t, g.PushInput(newTestInput(t, "ok", 2, func() types.Value {
		reads++
		return types.Float(1)
	})))

	errs, executed := g.Poll()
	require.True(t, executed)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], types.ErrNoCommand)

	// The healthy device was still read.
	assert.Equal(t, 1, reads)
}

func TestGroupAdoptedLogsUsePrefixAndRoot(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)
	g.SetLogPrefix("greenhouse")

	in := newTestInput(t, "probe", 1, nil)
	require.NoError(t, g.PushInput(in))

	assert.Equal(t, "greenhouse_probe_1.json", in.Log().Filename())
}

func TestGroupSaveAndLoadLogs(t *testing.T) {
	root := t.TempDir()

	g := New("test", time.Millisecond, root, nil)
	require.NoError(t, g.PushInput(newTestInput(t, "probe", 1, func() types.Value {
		return types.Float(1)
	})))

	_, executed := g.Poll()
	require.True(t, executed)
	require.Empty(t, g.SaveLogs())

	// A second group over the same root restores the events.
	restored := New("test", time.Millisecond, root, nil)
	require.NoError(t, restored.PushInput(newTestInput(t, "probe", 1, nil)))
	require.Empty(t, restored.LoadLogs())

	in, ok := restored.Input(1)
	require.True(t, ok)
	assert.Equal(t, 1, in.Log().Len())
}

func TestGroupSaveSkipsEmptyLogs(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)
	require.NoError(t, g.PushInput(newTestInput(t, "probe", 1, nil)))

	assert.Empty(t, g.SaveLogs())
}

func TestGroupRemoveOutputLosesPendingRoutines(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	out := newTestOutput(t, "pump", 10)
	require.NoError(t, g.PushOutput(out))

	routine, err := out.Schedule(types.Binary(false), time.Now().Add(-time.Millisecond))
	require.NoError(t, err)

	g.RemoveOutput(10)

	// The routine is dropped, and the orphaned log stays untouched.
	assert.True(t, routine.Attempt())
	assert.Equal(t, 0, out.Log().Len())
}

func TestGroupRemoveInputKeepsSameIDOutputRegistered(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	// One input and one output sharing id 1, both with logs.
	require.NoError(t, g.PushInput(newTestInput(t, "probe", 1, nil)))
	out := newTestOutput(t, "pump", 1)
	require.NoError(t, g.PushOutput(out))

	routine, err := out.Schedule(types.Binary(false), time.Now().Add(-time.Millisecond))
	require.NoError(t, err)

	// Tearing down the input must not unregister the output's log.
	g.RemoveInput(1)

	require.True(t, routine.Attempt())
	assert.Equal(t, 1, out.Log().Len(), "output's scheduled event must survive removal of the same-id input")

	// The live output can still schedule against its registered log.
	later, err := out.Schedule(types.Binary(true), time.Now().Add(-time.Millisecond))
	require.NoError(t, err)
	require.True(t, later.Attempt())
	assert.Equal(t, 2, out.Log().Len())
}

func TestGroupRemoveOutputKeepsSameIDInputRegistered(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	in := newTestInput(t, "probe", 1, func() types.Value { return types.Float(1) })
	require.NoError(t, g.PushInput(in))
	require.NoError(t, g.PushOutput(newTestOutput(t, "pump", 1)))

	g.RemoveOutput(1)

	// The input still polls and records into its registered log.
	errs, executed := g.Poll()
	require.True(t, executed)
	require.Empty(t, errs)
	assert.Equal(t, 1, in.Log().Len())
	assert.Equal(t, 1, g.Registry().Len())
}

func TestGroupSetLogPrefixReappliesToAdoptedLogs(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	in := newTestInput(t, "probe", 1, nil)
	out := newTestOutput(t, "pump", 10)
	require.NoError(t, g.PushInput(in))
	require.NoError(t, g.PushOutput(out))
	require.Equal(t, "events_probe_1.json", in.Log().Filename())

	// Setting the prefix after devices were pushed renames their logs.
	g.SetLogPrefix("custom")
	assert.Equal(t, "custom_probe_1.json", in.Log().Filename())
	assert.Equal(t, "custom_pump_10.json", out.Log().Filename())
}

func TestGroupAttemptRoutinesSweepsPublishers(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	cmd := action.NewReadCommand(func() types.Value { return types.Float(1) })
	in, err := device.BuildInput("probe", 1, types.KindUnassigned, device.InputOptions{
		Command:       &cmd,
		WithPublisher: true,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, g.PushInput(in))

	out := newTestOutput(t, "pump", 10)
	require.NoError(t, g.PushOutput(out))

	routine, err := out.Schedule(types.Binary(false), time.Now().Add(-time.Millisecond))
	require.NoError(t, err)
	in.Publisher().Scheduler().Push(routine)

	g.AttemptRoutines()
	assert.Equal(t, 0, in.Publisher().Scheduler().Pending())
	assert.Equal(t, 1, out.Log().Len())
}

func TestGroupPollErrorForMissingValue(t *testing.T) {
	g := New("test", time.Second, t.TempDir(), nil)

	// A read command with no function yields no value.
	cmd := action.NewReadCommand(nil)
	in, err := device.BuildInput("hollow", 1, types.KindUnassigned, device.InputOptions{Command: &cmd}, nil)
	require.NoError(t, err)
	require.NoError(t, g.PushInput(in))

	errs, executed := g.Poll()
	require.True(t, executed)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], types.ErrValueExpected))
}
