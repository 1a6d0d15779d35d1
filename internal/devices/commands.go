package devices

import (
	"math"
	"sync/atomic"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// CommandFactory binds a declared device to its low-level hardware
// access code. Hardware integrations supply their own factory; the
// default produces simulated commands so a definition runs without any
// attached hardware.
type CommandFactory func(def DeviceDefinition) (action.Command, error)

// SimulatedCommands is the default factory.
//
// Inputs produce a slow sine sweep so downstream thresholds and
// controllers see values crossing their setpoints. Outputs accept any
// value and report it at debug level.
func SimulatedCommands(logger *zap.Logger) CommandFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(def DeviceDefinition) (action.Command, error) {
		if def.Direction == types.DirectionOutput {
			name := def.Name
			return action.NewWriteCommand(func(value types.Value) error {
				logger.Debug("simulated write",
					zap.String("device", name),
					zap.String("value", value.String()))
				return nil
			}), nil
		}

		var tick atomic.Int64
		return action.NewReadCommand(func() types.Value {
			n := tick.Add(1)
			return types.Float(float32(10 * math.Sin(float64(n)/8)))
		}), nil
	}
}
