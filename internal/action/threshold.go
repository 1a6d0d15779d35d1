package action

import (
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Threshold is a bang-bang (on-off) controller.
//
// Every evaluation re-asserts the output state: when the incoming
// value exceeds the threshold in relation to the trigger, a
// notification is emitted and the output is actuated; otherwise the
// output is de-actuated. There is no hysteresis band.
//
// Given a reservoir with a fill-level sensor, a pump, and a drain
// valve, two Threshold instances over the same input can hold the
// level between two bounds. Depending on polling frequency there may
// be some variance between the threshold and the value at which
// actuation stops.
type Threshold struct {
	name      string
	threshold types.Value
	trigger   Trigger
	output    Actuator
	logger    *zap.Logger
}

func NewThreshold(name string, threshold types.Value, trigger Trigger, logger *zap.Logger) *Threshold {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Threshold{
		name:      name,
		threshold: threshold,
		trigger:   trigger,
		logger:    logger,
	}
}

// SetOutput associates the controller with exactly one output device.
// Returns the receiver for chaining during construction.
func (t *Threshold) SetOutput(output Actuator) *Threshold {
	t.output = output
	return t
}

func (t *Threshold) Output() Actuator {
	return t.output
}

func (t *Threshold) Threshold() types.Value {
	return t.threshold
}

func (t *Threshold) Name() string {
	return t.name
}

func (t *Threshold) Evaluate(event types.Event) {
	if t.trigger.Exceeded(event.Value, t.threshold) {
		t.logger.Info("threshold exceeded",
			zap.String("action", t.name),
			zap.String("value", event.Value.String()),
			zap.String("trigger", t.trigger.String()),
			zap.String("threshold", t.threshold.String()))
		t.write(types.Binary(true))
	} else {
		t.write(types.Binary(false))
	}
}

func (t *Threshold) write(value types.Value) {
	if t.output == nil {
		t.logger.Warn("threshold has no output device", zap.String("action", t.name))
		return
	}
	if _, err := t.output.Write(value); err != nil {
		t.logger.Error("failed to actuate output",
			zap.String("action", t.name),
			zap.String("device", t.output.Metadata().Name),
			zap.Error(err))
	}
}
