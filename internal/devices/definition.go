// Package devices builds populated device groups from declarative
// definition files (JSON or YAML), validated against an embedded
// schema.
package devices

import "github.com/KevinKickass/OpenSenseCore/internal/types"

// GroupDefinition is the root of a definition file: a named group and
// its devices.
type GroupDefinition struct {
	Group   string             `json:"group" yaml:"group"`
	Devices []DeviceDefinition `json:"devices" yaml:"devices"`
}

// DeviceDefinition declares one device: identity, whether it keeps a
// log, whether it publishes (inputs only), and the control actions
// subscribed to it.
type DeviceDefinition struct {
	Name      string          `json:"name" yaml:"name"`
	ID        types.ID        `json:"id" yaml:"id"`
	Kind      types.Kind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Direction types.Direction `json:"direction" yaml:"direction"`

	Log       bool `json:"log,omitempty" yaml:"log,omitempty"`
	Publisher bool `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	Actions []ActionDefinition `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// ActionDefinition declares a control action wired to an output
// device. Threshold fields and PID fields are mutually exclusive by
// type.
type ActionDefinition struct {
	Type   string   `json:"type" yaml:"type"`
	Name   string   `json:"name" yaml:"name"`
	Output types.ID `json:"output" yaml:"output"`

	// threshold
	Trigger   string       `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Threshold *types.Value `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// pid
	Setpoint float64 `json:"setpoint,omitempty" yaml:"setpoint,omitempty"`
	Kp       float64 `json:"kp,omitempty" yaml:"kp,omitempty"`
	Ki       float64 `json:"ki,omitempty" yaml:"ki,omitempty"`
	Kd       float64 `json:"kd,omitempty" yaml:"kd,omitempty"`
	WindowMs int     `json:"window_ms,omitempty" yaml:"window_ms,omitempty"`
}

const (
	ActionTypeThreshold = "threshold"
	ActionTypePID       = "pid"
)
