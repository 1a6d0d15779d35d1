package device

import (
	"testing"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputWriteWithoutCommand(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)

	_, err := out.Write(types.Binary(true))
	assert.ErrorIs(t, err, types.ErrNoCommand)
	assert.Nil(t, out.State())
}

func TestOutputWriteCachesStateAndLogs(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)
	var written types.Value
	require.NoError(t, out.SetCommand(action.NewWriteCommand(func(v types.Value) error {
		written = v
		return nil
	})))
	out.InitLog()

	event, err := out.Write(types.Binary(true))
	require.NoError(t, err)
	assert.True(t, types.Binary(true).Equal(event.Value))
	assert.True(t, types.Binary(true).Equal(written))

	state := out.State()
	require.NotNil(t, state)
	assert.True(t, types.Binary(true).Equal(*state))
	assert.Equal(t, 1, out.Log().Len())
}

func TestOutputSetCommandDirectionMismatch(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)

	err := out.SetCommand(action.NewReadCommand(nil))
	assert.ErrorIs(t, err, types.ErrDirectionMismatch)
	assert.False(t, out.HasCommand())
}

func TestOutputScheduleRequiresCommand(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)

	_, err := out.Schedule(types.Binary(false), time.Now())
	assert.ErrorIs(t, err, types.ErrNoCommand)
}

func TestOutputScheduleRequiresRegisteredLog(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)
	require.NoError(t, out.SetCommand(action.NewWriteCommand(nil)))

	_, err := out.Schedule(types.Binary(false), time.Now())
	assert.ErrorIs(t, err, types.ErrLogUnresolved)
}

func TestOutputScheduledRoutineWritesToLog(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)
	require.NoError(t, out.SetCommand(action.NewWriteCommand(func(types.Value) error { return nil })))
	out.InitLog()

	registry := chronicle.NewRegistry()
	out.AttachRef(chronicle.NewRef(registry, registry.Add(out.Log())))

	when := time.Now().Add(-time.Millisecond)
	routine, err := out.Schedule(types.Binary(false), when)
	require.NoError(t, err)

	require.True(t, routine.Attempt())
	events := out.Log().Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(when.UTC()))
}

func TestOutputRenameSyncsLog(t *testing.T) {
	out := NewOutput("pump", 10, types.KindUnassigned, nil)
	out.InitLog()

	out.Rename("drain pump")
	assert.Equal(t, "drain pump", out.Name())
	assert.Equal(t, "drain pump", out.Log().Metadata().Name)
}

func TestBuildOutput(t *testing.T) {
	cmd := action.NewWriteCommand(nil)
	out, err := BuildOutput("pump", 10, types.KindUnassigned, OutputOptions{
		Command: &cmd,
		WithLog: true,
	}, nil)
	require.NoError(t, err)

	assert.True(t, out.HasCommand())
	assert.True(t, out.HasLog())
	assert.Equal(t, types.DirectionOutput, out.Direction())
}

// Compile-time check that Output satisfies the actuator contract used
// by control actions.
var _ action.Actuator = (*Output)(nil)
