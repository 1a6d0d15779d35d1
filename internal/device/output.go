package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Output is a generic external output device (actuator).
type Output struct {
	mu       sync.Mutex
	metadata types.DeviceMetadata
	command  *action.Command
	log      *chronicle.Log
	ref      chronicle.Ref
	state    *types.Value
	logger   *zap.Logger
}

func NewOutput(name string, id types.ID, kind types.Kind, logger *zap.Logger) *Output {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Output{
		metadata: types.NewMetadata(name, id, kind, types.DirectionOutput),
		logger:   logger,
	}
}

// BuildOutput constructs an output from a single options struct.
// Direction mismatch in the supplied command fails immediately.
func BuildOutput(name string, id types.ID, kind types.Kind, opts OutputOptions, logger *zap.Logger) (*Output, error) {
	out := NewOutput(name, id, kind, logger)
	if opts.Command != nil {
		if err := out.SetCommand(*opts.Command); err != nil {
			return nil, err
		}
	}
	if opts.WithLog {
		out.InitLog()
	}
	return out, nil
}

func (out *Output) Metadata() types.DeviceMetadata {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.metadata
}

func (out *Output) Name() string {
	return out.Metadata().Name
}

func (out *Output) ID() types.ID {
	return out.Metadata().ID
}

func (out *Output) Kind() types.Kind {
	return out.Metadata().Kind
}

func (out *Output) Direction() types.Direction {
	return types.DirectionOutput
}

// Rename is the only mutation metadata permits after construction.
func (out *Output) Rename(name string) {
	out.mu.Lock()
	defer out.mu.Unlock()

	out.metadata.Name = name
	if out.log != nil {
		out.log.Rename(name)
	}
}

// SetCommand assigns the hardware access command. A command whose
// direction disagrees with the device is a configuration error.
func (out *Output) SetCommand(cmd action.Command) error {
	if err := cmd.Agrees(types.DirectionOutput); err != nil {
		return fmt.Errorf("device %q: %w", out.Name(), err)
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	out.command = &cmd
	return nil
}

func (out *Output) HasCommand() bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.command != nil
}

// InitLog attaches a fresh log keyed to this device's metadata;
// first writer wins.
func (out *Output) InitLog() {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.log != nil {
		return
	}
	out.log = chronicle.NewLog(out.metadata)
}

func (out *Output) Log() *chronicle.Log {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.log
}

func (out *Output) HasLog() bool {
	return out.Log() != nil
}

// AttachRef binds the shared-log handle issued when the log is
// registered with a group's registry. Scheduled routines carry this
// ref instead of a direct log reference.
func (out *Output) AttachRef(ref chronicle.Ref) {
	out.mu.Lock()
	defer out.mu.Unlock()
	out.ref = ref
}

// State returns the cached last-known value, nil until the first
// write.
func (out *Output) State() *types.Value {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.state
}

// Write executes the command with the given value, updates cached
// state, and appends the resulting event to the log if attached.
func (out *Output) Write(value types.Value) (types.Event, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.command == nil {
		return types.Event{}, fmt.Errorf("device %q: %w", out.metadata.Name, types.ErrNoCommand)
	}
	if _, err := out.command.Execute(&value); err != nil {
		return types.Event{}, fmt.Errorf("device %q: %w", out.metadata.Name, err)
	}

	event := types.NewEvent(value)
	out.state = &event.Value

	if out.log != nil {
		if err := out.log.Push(event); err != nil {
			out.logger.Error("failed to record event",
				zap.String("device", out.metadata.Name),
				zap.Error(err))
		}
	}
	return event, nil
}

// Schedule builds a routine that writes the given value at the
// scheduled time, carrying a snapshot of this device's metadata, a
// copy of its command, and its log handle. The device must have a
// command and a registered log.
func (out *Output) Schedule(value types.Value, at time.Time) (*action.Routine, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.command == nil {
		return nil, fmt.Errorf("device %q: %w", out.metadata.Name, types.ErrNoCommand)
	}
	if !out.ref.Bound() {
		return nil, fmt.Errorf("device %q: no registered log: %w", out.metadata.Name, types.ErrLogUnresolved)
	}
	return action.NewRoutine(at, out.metadata, value, out.ref, *out.command, out.logger), nil
}
