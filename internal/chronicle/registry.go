package chronicle

import "sync"

// Handle addresses a Log held in a Registry. Handles stay stable for
// the registry's lifetime; a removed log simply stops resolving.
type Handle uint64

// Registry is an arena of shared logs addressed by handle.
//
// Routines hold a handle instead of a direct reference so that a log
// torn down with its device yields an explicit "not found" lookup at
// execution time rather than a dangling reference.
type Registry struct {
	mu   sync.RWMutex
	next Handle
	logs map[Handle]*Log
}

func NewRegistry() *Registry {
	return &Registry{logs: make(map[Handle]*Log)}
}

// Add registers a log and returns its handle.
func (r *Registry) Add(log *Log) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.logs[r.next] = log
	return r.next
}

// Get resolves a handle. The second return is false when the target
// was removed or never existed.
func (r *Registry) Get(h Handle) (*Log, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log, ok := r.logs[h]
	return log, ok
}

// Remove tears down a handle. Resolving it afterwards fails.
func (r *Registry) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.logs, h)
}

// Len returns the number of registered logs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}

// Ref pairs a registry with a handle, forming the non-owning log
// reference carried by scheduled routines.
type Ref struct {
	registry *Registry
	handle   Handle
}

func NewRef(registry *Registry, handle Handle) Ref {
	return Ref{registry: registry, handle: handle}
}

// Resolve looks the handle up. Returns false when the ref was never
// bound or the target log has been removed.
func (r Ref) Resolve() (*Log, bool) {
	if r.registry == nil {
		return nil, false
	}
	return r.registry.Get(r.handle)
}

// Bound reports whether the ref points at a registry at all.
func (r Ref) Bound() bool {
	return r.registry != nil
}
