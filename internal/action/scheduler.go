package action

import "sync"

// Scheduler holds the pending routines for one publisher.
//
// The pending set is unordered: no priority, no guarantee across
// routines with different scheduled times. AttemptRoutines should be
// called as often as possible, independent of and typically more often
// than the polling cycle — scheduled times are not aligned to polling
// boundaries, so the tighter the sweep, the smaller the actuation
// latency error.
type Scheduler struct {
	mu      sync.Mutex
	pending []*Routine
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Push appends a routine to the pending set.
func (s *Scheduler) Push(r *Routine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, r)
}

// Pending returns the number of routines awaiting execution.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Scheduled returns a snapshot of the pending set.
func (s *Scheduler) Scheduled() []*Routine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Routine, len(s.pending))
	copy(out, s.pending)
	return out
}

// AttemptRoutines evaluates every pending routine once. Routines that
// report completion are removed after the iteration finishes, so the
// set is never mutated mid-iteration.
func (s *Scheduler) AttemptRoutines() {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.pending[:0]
	for _, routine := range s.pending {
		if !routine.Attempt() {
			remaining = append(remaining, routine)
		}
	}
	for i := len(remaining); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = remaining
}
