package action

import (
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// PID maintains a setpoint by converting each incoming reading into a
// bounded-duration actuation.
//
// Evaluate computes the standard proportional-integral-derivative
// signal against the setpoint, normalizes it to [0, 1], and actuates
// the output for that fraction of the actuation window: the output is
// switched on immediately and a routine scheduled through the owning
// publisher's scheduler switches it off again. A signal at or below
// zero de-actuates the output instead.
type PID struct {
	name     string
	setpoint float64
	kp       float64
	ki       float64
	kd       float64

	// window bounds how long a single evaluation may keep the
	// output actuated.
	window time.Duration

	output    Actuator
	scheduler *Scheduler
	logger    *zap.Logger

	integral float64
	lastErr  float64
	lastTime time.Time
}

func NewPID(name string, setpoint, kp, ki, kd float64, window time.Duration, logger *zap.Logger) *PID {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PID{
		name:     name,
		setpoint: setpoint,
		kp:       kp,
		ki:       ki,
		kd:       kd,
		window:   window,
		logger:   logger,
	}
}

// SetOutput associates the controller with exactly one output device.
func (p *PID) SetOutput(output Actuator) *PID {
	p.output = output
	return p
}

func (p *PID) Output() Actuator {
	return p.output
}

// SetScheduler wires the publisher's scheduler so evaluations can push
// de-actuation routines.
func (p *PID) SetScheduler(s *Scheduler) *PID {
	p.scheduler = s
	return p
}

func (p *PID) Name() string {
	return p.name
}

func (p *PID) Setpoint() float64 {
	return p.setpoint
}

func (p *PID) Evaluate(event types.Event) {
	signal := p.signal(event.Value.Float64(), event.Timestamp)

	if p.output == nil {
		p.logger.Warn("pid has no output device", zap.String("action", p.name))
		return
	}

	duration := p.actuation(signal)
	if duration <= 0 {
		if _, err := p.output.Write(types.Binary(false)); err != nil {
			p.logger.Error("failed to de-actuate output", zap.String("action", p.name), zap.Error(err))
		}
		return
	}

	if _, err := p.output.Write(types.Binary(true)); err != nil {
		p.logger.Error("failed to actuate output", zap.String("action", p.name), zap.Error(err))
		return
	}

	routine, err := p.output.Schedule(types.Binary(false), event.Timestamp.Add(duration))
	if err != nil {
		p.logger.Error("failed to schedule de-actuation",
			zap.String("action", p.name),
			zap.Error(err))
		return
	}
	if p.scheduler == nil {
		p.logger.Warn("pid has no scheduler; de-actuation not scheduled", zap.String("action", p.name))
		return
	}
	p.scheduler.Push(routine)
	p.logger.Debug("scheduled de-actuation",
		zap.String("action", p.name),
		zap.String("routine", routine.ID().String()),
		zap.Duration("after", duration))
}

// signal advances controller state and returns the raw control signal.
func (p *PID) signal(value float64, now time.Time) float64 {
	errv := p.setpoint - value

	var derivative float64
	if !p.lastTime.IsZero() {
		dt := now.Sub(p.lastTime).Seconds()
		if dt > 0 {
			p.integral += errv * dt
			derivative = (errv - p.lastErr) / dt
		}
	}
	p.lastErr = errv
	p.lastTime = now

	return p.kp*errv + p.ki*p.integral + p.kd*derivative
}

// actuation converts the control signal into a bounded on-duration.
// The signal is normalized against the setpoint magnitude and clamped
// to [0, 1] before scaling the window.
func (p *PID) actuation(signal float64) time.Duration {
	if signal <= 0 {
		return 0
	}
	norm := signal
	if p.setpoint != 0 {
		norm = signal / abs(p.setpoint)
	}
	if norm > 1 {
		norm = 1
	}
	return time.Duration(norm * float64(p.window))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
