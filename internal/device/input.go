package device

import (
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Input is a generic external input device (sensor).
//
// Reads are driven externally: whoever owns the device polls Read at
// its chosen frequency. Each successful read executes the command,
// stamps an event, updates the cached state, hands the event to the
// publisher, and appends it to the log.
type Input struct {
	mu        sync.Mutex
	metadata  types.DeviceMetadata
	command   *action.Command
	log       *chronicle.Log
	publisher *action.Publisher
	state     *types.Value
	logger    *zap.Logger
}

func NewInput(name string, id types.ID, kind types.Kind, logger *zap.Logger) *Input {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Input{
		metadata: types.NewMetadata(name, id, kind, types.DirectionInput),
		logger:   logger,
	}
}

// BuildInput constructs an input from a single options struct.
// Direction mismatch in the supplied command fails immediately.
func BuildInput(name string, id types.ID, kind types.Kind, opts InputOptions, logger *zap.Logger) (*Input, error) {
	in := NewInput(name, id, kind, logger)
	if opts.Command != nil {
		if err := in.SetCommand(*opts.Command); err != nil {
			return nil, err
		}
	}
	if opts.WithLog {
		in.InitLog()
	}
	if opts.WithPublisher {
		in.InitPublisher()
	}
	return in, nil
}

func (in *Input) Metadata() types.DeviceMetadata {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.metadata
}

func (in *Input) Name() string {
	return in.Metadata().Name
}

func (in *Input) ID() types.ID {
	return in.Metadata().ID
}

func (in *Input) Kind() types.Kind {
	return in.Metadata().Kind
}

func (in *Input) Direction() types.Direction {
	return types.DirectionInput
}

// Rename is the only mutation metadata permits after construction.
// The attached log's metadata copy is kept in step.
func (in *Input) Rename(name string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.metadata.Name = name
	if in.log != nil {
		in.log.Rename(name)
	}
}

// SetCommand assigns the hardware access command. A command whose
// direction disagrees with the device is a configuration error.
func (in *Input) SetCommand(cmd action.Command) error {
	if err := cmd.Agrees(types.DirectionInput); err != nil {
		return fmt.Errorf("device %q: %w", in.Name(), err)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.command = &cmd
	return nil
}

func (in *Input) HasCommand() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.command != nil
}

// InitLog attaches a fresh log keyed to this device's metadata.
// First writer wins: a second call is silently ignored so the log
// identity is stable for the device's lifetime.
func (in *Input) InitLog() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.log != nil {
		return
	}
	in.log = chronicle.NewLog(in.metadata)
}

func (in *Input) Log() *chronicle.Log {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.log
}

func (in *Input) HasLog() bool {
	return in.Log() != nil
}

// InitPublisher attaches a fresh publisher. First writer wins: a
// second call warns and no-ops, preserving a single mediator identity
// for the device's lifetime.
func (in *Input) InitPublisher() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.publisher != nil {
		in.logger.Warn("publisher already exists", zap.String("device", in.metadata.Name))
		return
	}
	in.publisher = action.NewPublisher()
}

func (in *Input) Publisher() *action.Publisher {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.publisher
}

func (in *Input) HasPublisher() bool {
	return in.Publisher() != nil
}

// Subscribe adds an action to the device's publisher. A device without
// a publisher drops the subscription with a warning.
func (in *Input) Subscribe(a action.Action) {
	publisher := in.Publisher()
	if publisher == nil {
		in.logger.Warn("cannot subscribe: device has no publisher",
			zap.String("device", in.Name()),
			zap.String("action", a.Name()))
		return
	}
	publisher.Subscribe(a)
}

// State returns the cached last-known value, nil until the first
// successful read.
func (in *Input) State() *types.Value {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Read is the primary interface method during polling.
//
// It executes the command, builds an event from the reading, updates
// the cached state, propagates the event to the publisher, and appends
// it to the log. Propagation and logging are each silently skipped
// when unattached.
func (in *Input) Read() (types.Event, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.command == nil {
		return types.Event{}, fmt.Errorf("device %q: %w", in.metadata.Name, types.ErrNoCommand)
	}

	value, err := in.command.Execute(nil)
	if err != nil {
		return types.Event{}, fmt.Errorf("device %q: %w", in.metadata.Name, err)
	}
	if value == nil {
		return types.Event{}, fmt.Errorf("device %q: %w", in.metadata.Name, types.ErrValueExpected)
	}

	event := types.NewEvent(*value)
	in.state = &event.Value

	if in.publisher != nil {
		in.publisher.Notify(event)
	}
	if in.log != nil {
		if err := in.log.Push(event); err != nil {
			in.logger.Error("failed to record event",
				zap.String("device", in.metadata.Name),
				zap.Error(err))
		}
	}
	return event, nil
}
