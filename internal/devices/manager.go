package devices

import (
	"fmt"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/action"
	"github.com/KevinKickass/OpenSenseCore/internal/device"
	"github.com/KevinKickass/OpenSenseCore/internal/group"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Manager turns definition files into populated groups: devices
// constructed, commands bound, logs and publishers attached, and
// actions subscribed.
type Manager struct {
	loader   *Loader
	commands CommandFactory
	logger   *zap.Logger
}

func NewManager(searchPaths []string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loader, err := NewLoader(searchPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create definition loader: %w", err)
	}

	return &Manager{
		loader:   loader,
		commands: SimulatedCommands(logger),
		logger:   logger,
	}, nil
}

// SetCommandFactory replaces the simulated hardware binding.
func (m *Manager) SetCommandFactory(factory CommandFactory) {
	m.commands = factory
}

// BuildGroup loads a named definition and returns a group populated
// with its devices. Outputs are built first so input actions can be
// wired to them.
func (m *Manager) BuildGroup(name string, interval time.Duration, root string) (*group.Group, error) {
	definition, err := m.loader.Load(name)
	if err != nil {
		return nil, err
	}

	g := group.New(definition.Group, interval, root, m.logger)

	for _, def := range definition.Devices {
		if def.Direction != types.DirectionOutput {
			continue
		}
		out, err := m.buildOutput(def)
		if err != nil {
			return nil, err
		}
		if err := g.PushOutput(out); err != nil {
			return nil, err
		}
	}

	for _, def := range definition.Devices {
		if def.Direction != types.DirectionInput {
			continue
		}
		in, err := m.buildInput(def, g)
		if err != nil {
			return nil, err
		}
		if err := g.PushInput(in); err != nil {
			return nil, err
		}
	}

	m.logger.Info("group built from definition",
		zap.String("group", definition.Group),
		zap.Int("inputs", len(g.Inputs())),
		zap.Int("outputs", len(g.Outputs())))

	return g, nil
}

func (m *Manager) buildOutput(def DeviceDefinition) (*device.Output, error) {
	cmd, err := m.commands(def)
	if err != nil {
		return nil, fmt.Errorf("failed to bind command for %q: %w", def.Name, err)
	}

	out, err := device.BuildOutput(def.Name, def.ID, def.Kind, device.OutputOptions{
		Command: &cmd,
		WithLog: def.Log,
	}, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build output %q: %w", def.Name, err)
	}
	return out, nil
}

func (m *Manager) buildInput(def DeviceDefinition, g *group.Group) (*device.Input, error) {
	cmd, err := m.commands(def)
	if err != nil {
		return nil, fmt.Errorf("failed to bind command for %q: %w", def.Name, err)
	}

	withPublisher := def.Publisher || len(def.Actions) > 0
	in, err := device.BuildInput(def.Name, def.ID, def.Kind, device.InputOptions{
		Command:       &cmd,
		WithLog:       def.Log,
		WithPublisher: withPublisher,
	}, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build input %q: %w", def.Name, err)
	}

	for _, actionDef := range def.Actions {
		a, err := m.buildAction(actionDef, in, g)
		if err != nil {
			return nil, err
		}
		in.Subscribe(a)
	}
	return in, nil
}

func (m *Manager) buildAction(def ActionDefinition, in *device.Input, g *group.Group) (action.Action, error) {
	out, ok := g.Output(def.Output)
	if !ok {
		return nil, fmt.Errorf("action %q: output %d not declared", def.Name, def.Output)
	}

	switch def.Type {
	case ActionTypeThreshold:
		if def.Threshold == nil {
			return nil, fmt.Errorf("action %q: threshold value required", def.Name)
		}
		return action.NewThreshold(def.Name, *def.Threshold, action.Trigger(def.Trigger), m.logger).
			SetOutput(out), nil

	case ActionTypePID:
		window := time.Duration(def.WindowMs) * time.Millisecond
		pid := action.NewPID(def.Name, def.Setpoint, def.Kp, def.Ki, def.Kd, window, m.logger).
			SetOutput(out)
		if publisher := in.Publisher(); publisher != nil {
			pid.SetScheduler(publisher.Scheduler())
		}
		return pid, nil

	default:
		return nil, fmt.Errorf("action %q: unknown type %q", def.Name, def.Type)
	}
}
