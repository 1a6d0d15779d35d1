// Package group provides the high-level container that mediates
// polling, event dissemination, scheduled routines, and batch
// persistence for a set of devices.
package group

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/device"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Group owns the input and output device containers, the shared log
// registry, and the storage root its logs persist under.
//
// Poll and AttemptRoutines are the two primary callables and run on
// different cadences: Poll executes at most once per interval, while
// AttemptRoutines should be swept as often as possible to keep
// scheduled actuation latency small.
type Group struct {
	name     string
	interval time.Duration

	mu            sync.Mutex
	lastExecution time.Time
	inputs        map[types.ID]*device.Input
	outputs       map[types.ID]*device.Output

	// Handles are tracked per container: ids are only unique within a
	// direction, so an input and an output may share one.
	inputHandles  map[types.ID]chronicle.Handle
	outputHandles map[types.ID]chronicle.Handle

	registry  *chronicle.Registry
	root      string
	logPrefix string
	logger    *zap.Logger
}

func New(name string, interval time.Duration, root string, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group{
		name:          name,
		interval:      interval,
		lastExecution: time.Now().Add(-interval),
		inputs:        make(map[types.ID]*device.Input),
		outputs:       make(map[types.ID]*device.Output),
		inputHandles:  make(map[types.ID]chronicle.Handle),
		outputHandles: make(map[types.ID]chronicle.Handle),
		registry:      chronicle.NewRegistry(),
		root:          root,
		logPrefix:     chronicle.DefaultPrefix,
		logger:        logger,
	}
}

func (g *Group) Name() string {
	return g.name
}

func (g *Group) Interval() time.Duration {
	return g.interval
}

func (g *Group) Registry() *chronicle.Registry {
	return g.registry
}

// SetLogPrefix overrides the filename prefix of every adopted log and
// of logs adopted afterwards.
func (g *Group) SetLogPrefix(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prefix == "" {
		return
	}
	g.logPrefix = prefix
	for _, in := range g.inputs {
		if log := in.Log(); log != nil {
			log.SetPrefix(prefix)
		}
	}
	for _, out := range g.outputs {
		if log := out.Log(); log != nil {
			log.SetPrefix(prefix)
		}
	}
}

// PushInput adds an input device, wiring its log (if any) into the
// storage root and the shared registry.
func (g *Group) PushInput(in *device.Input) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := in.ID()
	if _, ok := g.inputs[id]; ok {
		return fmt.Errorf("group %q: input %d: %w", g.name, id, types.ErrDuplicateID)
	}
	g.inputs[id] = in
	if log := in.Log(); log != nil {
		g.inputHandles[id] = g.adoptLog(log)
	}
	return nil
}

// PushOutput adds an output device, wiring its log (if any) into the
// storage root and the shared registry, and binding the log handle
// that scheduled routines will carry.
func (g *Group) PushOutput(out *device.Output) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := out.ID()
	if _, ok := g.outputs[id]; ok {
		return fmt.Errorf("group %q: output %d: %w", g.name, id, types.ErrDuplicateID)
	}
	g.outputs[id] = out
	if log := out.Log(); log != nil {
		handle := g.adoptLog(log)
		g.outputHandles[id] = handle
		out.AttachRef(chronicle.NewRef(g.registry, handle))
	}
	return nil
}

func (g *Group) adoptLog(log *chronicle.Log) chronicle.Handle {
	log.SetDir(g.root)
	log.SetPrefix(g.logPrefix)
	return g.registry.Add(log)
}

func (g *Group) Input(id types.ID) (*device.Input, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	in, ok := g.inputs[id]
	return in, ok
}

func (g *Group) Output(id types.ID) (*device.Output, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out, ok := g.outputs[id]
	return out, ok
}

// Inputs returns the input devices ordered by id.
func (g *Group) Inputs() []*device.Input {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*device.Input, 0, len(g.inputs))
	for _, in := range g.inputs {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Outputs returns the output devices ordered by id.
func (g *Group) Outputs() []*device.Output {
	g.mu.Lock()
	defer g.mu.Unlock()

	outs := make([]*device.Output, 0, len(g.outputs))
	for _, out := range g.outputs {
		outs = append(outs, out)
	}
	sort.Slice(outs, func(i, j int) bool { return outs[i].ID() < outs[j].ID() })
	return outs
}

// RemoveInput tears the device down, unregistering its log from the
// shared registry.
func (g *Group) RemoveInput(id types.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inputs, id)
	g.dropHandle(g.inputHandles, id)
}

// RemoveOutput tears the device down, unregistering its log. Routines
// still pending against that log are permanently lost at their next
// attempt.
func (g *Group) RemoveOutput(id types.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.outputs, id)
	g.dropHandle(g.outputHandles, id)
}

func (g *Group) dropHandle(handles map[types.ID]chronicle.Handle, id types.ID) {
	if handle, ok := handles[id]; ok {
		g.registry.Remove(handle)
		delete(handles, id)
	}
}

// Poll reads every input device once, at most once per interval.
//
// The second return reports whether the poll executed. A device
// failure never halts the cycle: errors are collected and returned
// together.
func (g *Group) Poll() ([]error, bool) {
	g.mu.Lock()
	next := g.lastExecution.Add(g.interval)
	if time.Now().Before(next) {
		g.mu.Unlock()
		return nil, false
	}
	g.lastExecution = next
	inputs := make([]*device.Input, 0, len(g.inputs))
	for _, in := range g.inputs {
		inputs = append(inputs, in)
	}
	g.mu.Unlock()

	var errs []error
	for _, in := range inputs {
		if _, err := in.Read(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs, true
}

// AttemptRoutines sweeps the scheduler of every publisher once.
func (g *Group) AttemptRoutines() {
	for _, in := range g.Inputs() {
		if publisher := in.Publisher(); publisher != nil {
			publisher.AttemptScheduled()
		}
	}
}

// SaveLogs persists every non-empty device log. Failures are
// collected per device and do not block sibling saves. Logs that are
// empty are skipped rather than reported.
func (g *Group) SaveLogs() []error {
	var errs []error
	for _, log := range g.logs() {
		if log.Len() == 0 {
			continue
		}
		if err := log.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// LoadLogs restores every empty device log from the storage root.
// Failures are collected per device and do not block sibling loads.
func (g *Group) LoadLogs() []error {
	var errs []error
	for _, log := range g.logs() {
		if log.Len() != 0 {
			continue
		}
		if err := log.Load(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (g *Group) logs() []*chronicle.Log {
	var logs []*chronicle.Log
	for _, in := range g.Inputs() {
		if log := in.Log(); log != nil {
			logs = append(logs, log)
		}
	}
	for _, out := range g.Outputs() {
		if log := out.Log(); log != nil {
			logs = append(logs, log)
		}
	}
	return logs
}
