package system

import (
	"context"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/config"
	"github.com/KevinKickass/OpenSenseCore/internal/group"
	"github.com/KevinKickass/OpenSenseCore/internal/storage"
	"go.uber.org/zap"
)

// Runner drives the control loop: routine sweeps at the tight
// interval, polling whenever the group's own interval has elapsed.
// On shutdown, device logs are saved and (when configured) archived.
type Runner struct {
	cfg     *config.Config
	group   *group.Group
	archive *storage.Archive
	logger  *zap.Logger

	stateMu sync.RWMutex
	state   SystemState
	started bool

	stopChan     chan struct{}
	doneChan     chan struct{}
	shutdownOnce sync.Once
}

// NewRunner wires the control loop. archive may be nil when archiving
// is disabled.
func NewRunner(cfg *config.Config, g *group.Group, archive *storage.Archive, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		group:    g,
		archive:  archive,
		logger:   logger,
		state:    StateInitializing,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (r *Runner) State() SystemState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

func (r *Runner) setState(state SystemState) {
	r.stateMu.Lock()
	r.state = state
	r.stateMu.Unlock()
}

// Start launches the control loop.
func (r *Runner) Start() error {
	r.stateMu.Lock()
	r.state = StateRunning
	r.started = true
	r.stateMu.Unlock()
	go r.loop()

	r.logger.Info("control loop started",
		zap.String("group", r.group.Name()),
		zap.Duration("poll_interval", r.group.Interval()),
		zap.Duration("routine_interval", r.cfg.Group.RoutineInterval))
	return nil
}

// loop is the single logical thread of control. Routine sweeps run on
// every tick so scheduled actuation stays close to its scheduled time;
// the group refuses to poll until its own interval has elapsed.
func (r *Runner) loop() {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.cfg.Group.RoutineInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.group.AttemptRoutines()

			errs, executed := r.group.Poll()
			if !executed {
				continue
			}
			for _, err := range errs {
				r.logger.Error("poll failed", zap.Error(err))
			}
		}
	}
}

// Shutdown stops the loop, saves all device logs, and archives them
// when an archive is attached. Per-device persistence failures are
// reported individually and do not block sibling saves.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() {
		r.stateMu.RLock()
		started := r.started
		r.stateMu.RUnlock()

		r.setState(StateStopping)
		close(r.stopChan)

		// With no loop running, nothing else will ever close doneChan.
		if !started {
			close(r.doneChan)
		}
	})

	select {
	case <-r.doneChan:
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, err := range r.group.SaveLogs() {
		r.logger.Error("failed to save log", zap.Error(err))
	}

	if r.archive != nil {
		r.archiveLogs()
		if err := r.archive.Close(); err != nil {
			r.logger.Error("failed to close archive", zap.Error(err))
		}
	}

	r.setState(StateStopped)
	r.logger.Info("control loop stopped", zap.String("group", r.group.Name()))
	return nil
}

func (r *Runner) archiveLogs() {
	for _, in := range r.group.Inputs() {
		if log := in.Log(); log != nil && log.Len() > 0 {
			if err := r.archive.ArchiveLog(log); err != nil {
				r.logger.Error("failed to archive log", zap.Error(err))
			}
		}
	}
	for _, out := range r.group.Outputs() {
		if log := out.Log(); log != nil && log.Len() > 0 {
			if err := r.archive.ArchiveLog(log); err != nil {
				r.logger.Error("failed to archive log", zap.Error(err))
			}
		}
	}
}
