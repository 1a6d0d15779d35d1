package action

import (
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routine is a one-shot command execution scheduled outside the normal
// polling cycle, typically an output write that completes a time-bound
// operation (e.g. turning a pump off after a predetermined period).
//
// Lifecycle is pending -> executed, with no cancellation and no retry
// after success. A routine never expires: it stays in its scheduler's
// pending set until its scheduled time passes.
type Routine struct {
	id uuid.UUID

	// when is the scheduled execution time. The resulting event is
	// stamped with this time, not the actual execution time.
	when time.Time

	// metadata is a copy of the originating device's metadata. A
	// copy avoids lock contention on the device while time-critical
	// execution is pending.
	metadata types.DeviceMetadata

	value   types.Value
	log     chronicle.Ref
	command Command
	logger  *zap.Logger
}

func NewRoutine(
	when time.Time,
	metadata types.DeviceMetadata,
	value types.Value,
	log chronicle.Ref,
	command Command,
	logger *zap.Logger,
) *Routine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Routine{
		id:       uuid.New(),
		when:     when,
		metadata: metadata,
		value:    value,
		log:      log,
		command:  command,
		logger:   logger,
	}
}

func (r *Routine) ID() uuid.UUID {
	return r.id
}

func (r *Routine) When() time.Time {
	return r.when
}

func (r *Routine) Metadata() types.DeviceMetadata {
	return r.metadata
}

// Attempt executes the routine if its scheduled time has passed.
//
// The return value tells the scheduler whether to drop the routine:
// false means not yet due (no side effects) or a transient execution
// failure worth retrying; true means executed, or permanently lost
// because the originating log was torn down with its device. The lost
// case is reported loudly but never crashes the process.
func (r *Routine) Attempt() bool {
	if time.Now().Before(r.when) {
		return false
	}

	log, ok := r.log.Resolve()
	if !ok {
		r.logger.Error("routine permanently lost: originating log no longer exists",
			zap.String("routine", r.id.String()),
			zap.String("device", r.metadata.Name),
			zap.Uint32("device_id", uint32(r.metadata.ID)))
		return true
	}

	if _, err := r.command.Execute(&r.value); err != nil {
		r.logger.Error("scheduled command failed",
			zap.String("routine", r.id.String()),
			zap.String("device", r.metadata.Name),
			zap.Error(err))
		return false
	}

	event := types.EventAt(r.when, r.value)
	if err := log.Push(event); err != nil {
		r.logger.Error("failed to record scheduled event",
			zap.String("routine", r.id.String()),
			zap.String("device", r.metadata.Name),
			zap.Error(err))
	}
	return true
}
