// Package device provides the Input and Output abstractions over
// hardware access commands.
//
// Devices own identity metadata, a cached last-known value, an
// optional command, and an optional event log. Inputs additionally own
// an optional publisher that disseminates events to control actions.
package device

import "github.com/KevinKickass/OpenSenseCore/internal/action"

// InputOptions enumerates the optional pieces of an input device,
// consumed by BuildInput in a single pass so misconfiguration fails at
// construction.
type InputOptions struct {
	Command       *action.Command
	WithLog       bool
	WithPublisher bool
}

// OutputOptions enumerates the optional pieces of an output device.
type OutputOptions struct {
	Command *action.Command
	WithLog bool
}
