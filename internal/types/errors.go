package types

import "errors"

// Error taxonomy shared across the core.
//
// Device errors are returned from read/write and collected by the
// polling driver without halting the cycle. Container errors are
// returned by Log operations. Configuration errors (direction
// mismatch) abort construction. Callers branch with errors.Is after
// wrapping with context.
var (
	// ErrNoCommand is returned when a device is read or written
	// without a command assigned.
	ErrNoCommand = errors.New("device has no command")

	// ErrValueExpected is returned when an input command produced
	// nothing usable.
	ErrValueExpected = errors.New("command returned no value")

	// ErrValueRequired is returned when an output command is
	// executed without a value to write.
	ErrValueRequired = errors.New("no value passed to output command")

	// ErrDirectionMismatch is returned when a command's direction
	// disagrees with its device.
	ErrDirectionMismatch = errors.New("command direction does not agree with device")

	// ErrKeyExists is returned when pushing an event whose timestamp
	// is already present in a log.
	ErrKeyExists = errors.New("timestamp already exists in log")

	// ErrContainerEmpty is returned when saving a log that holds no
	// events.
	ErrContainerEmpty = errors.New("container is empty")

	// ErrContainerNotEmpty is returned when loading into a log that
	// already holds events.
	ErrContainerNotEmpty = errors.New("container is not empty")

	// ErrMetadataMismatch is returned when merging logs that do not
	// originate from the same device.
	ErrMetadataMismatch = errors.New("log metadata does not match")

	// ErrLogUnresolved is returned when a log handle no longer
	// resolves because its target was removed.
	ErrLogUnresolved = errors.New("log reference no longer resolves")

	// ErrDuplicateID is returned when adding a device whose id is
	// already present in a group.
	ErrDuplicateID = errors.New("device id already present")
)
