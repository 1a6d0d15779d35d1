package action

import (
	"sync"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
)

// Publisher routes events generated by one input device to its
// subscribed actions.
//
// The publisher is a layer of indirection between input and output:
// neither is aware of the other. Events produced by a read are handed
// to Notify, which evaluates every subscriber synchronously in
// subscription order on the calling goroutine. Each publisher also
// owns the scheduler holding routines created by its subscribers.
type Publisher struct {
	mu          sync.Mutex
	subscribers []Action
	scheduler   *Scheduler
}

func NewPublisher() *Publisher {
	return &Publisher{scheduler: NewScheduler()}
}

// Subscribe appends an action to the ordered subscriber list. No
// deduplication is performed.
func (p *Publisher) Subscribe(a Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, a)
}

// Subscribers returns a snapshot of the subscriber list.
func (p *Publisher) Subscribers() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Action, len(p.subscribers))
	copy(out, p.subscribers)
	return out
}

// Notify evaluates every subscriber against the event, strictly in
// subscription order; each completes before the next begins. A
// subscriber that panics propagates to the caller.
//
// Evaluation happens outside the lock so a subscriber may call back
// into its own publisher; subscriptions made during a notification
// take effect from the next event.
func (p *Publisher) Notify(event types.Event) {
	for _, subscriber := range p.Subscribers() {
		subscriber.Evaluate(event)
	}
}

// Scheduler exposes the pending routine set so actions can schedule
// deferred execution without the publisher growing a method per use
// case.
func (p *Publisher) Scheduler() *Scheduler {
	return p.scheduler
}

// AttemptScheduled runs one sweep over this publisher's pending
// routines.
func (p *Publisher) AttemptScheduled() {
	p.scheduler.AttemptRoutines()
}
