package action

import (
	"fmt"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// ReadFunc is the shape of low-level code that reads hardware input.
type ReadFunc func() types.Value

// WriteFunc is the shape of low-level code that writes hardware output.
type WriteFunc func(types.Value) error

// Command wraps a single hardware access function tagged with its
// dataflow direction. It is the sole hardware boundary: the core never
// talks to hardware except through a Command.
//
// Commands should contain HAL code only and perform no other logic.
type Command struct {
	direction types.Direction
	read      ReadFunc
	write     WriteFunc
}

// NewReadCommand wraps low-level input code.
func NewReadCommand(fn ReadFunc) Command {
	return Command{direction: types.DirectionInput, read: fn}
}

// NewWriteCommand wraps low-level output code.
func NewWriteCommand(fn WriteFunc) Command {
	return Command{direction: types.DirectionOutput, write: fn}
}

func (c Command) Direction() types.Direction {
	return c.direction
}

// Agrees verifies alignment between the command and an external
// direction. Used to enforce the device/command invariant at
// configuration time, not at call time.
func (c Command) Agrees(direction types.Direction) error {
	if c.direction != direction {
		return fmt.Errorf("command is %s, device is %s: %w", c.direction, direction, types.ErrDirectionMismatch)
	}
	return nil
}

// Execute runs the stored function. A read command ignores any passed
// value (with a warning) and returns the reading; a write command
// consumes the value and returns nil.
//
// Executing a write command without a value is a programming error and
// panics.
func (c Command) Execute(value *types.Value) (*types.Value, error) {
	switch c.direction {
	case types.DirectionInput:
		if value != nil {
			zap.L().Warn("unused value passed when reading input", zap.String("value", value.String()))
		}
		if c.read == nil {
			return nil, nil
		}
		result := c.read()
		return &result, nil
	default:
		if value == nil {
			panic(types.ErrValueRequired)
		}
		if c.write == nil {
			return nil, nil
		}
		if err := c.write(*value); err != nil {
			return nil, fmt.Errorf("output command failed: %w", err)
		}
		return nil, nil
	}
}
