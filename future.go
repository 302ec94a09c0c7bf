package flock

import "sync"

// futureState is the Pending/Running/Completed progression a Future
// moves through. It transitions monotonically forward; it never
// regresses.
type futureState uint32

const (
	statePending futureState = iota
	stateRunning
	stateCompleted
)

// Future is the completion handle for a submitted Job: one per submitted
// unit of work, shared between the agent that runs it and whoever later
// waits on it. The done flag is the synchronization edge — the agent's
// write of the result happens-before any Wait/Get that observes done.
type Future struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state futureState
	result Status
	valid bool
}

// newFuture creates a pending, valid Future.
func newFuture() *Future {
	f := &Future{valid: true}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// invalidFuture creates a Future that is already flagged invalid: a
// handle returned from a failed submission (pool uninitialized or
// terminated). Waiting on it never blocks and always yields
// ErrInvalidFuture.
func invalidFuture() *Future {
	f := &Future{valid: false, state: stateCompleted, result: ErrFrom(ErrInvalidFuture)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// IsValid reports whether this Future was produced by a successful
// submission. An invalid Future never runs any work and always completes
// immediately with a synthetic error.
func (f *Future) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid
}

// Done reports whether the Future has completed.
func (f *Future) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == stateCompleted
}

// markRunning transitions Pending -> Running. Exactly one agent ever
// calls this for a given Future: the worker or helping waiter that popped
// the associated Job off the task stack.
func (f *Future) markRunning() {
	f.mu.Lock()
	f.state = stateRunning
	f.mu.Unlock()
}

// complete transitions Running -> Completed, records the result, and
// wakes any goroutine blocked in Wait.
func (f *Future) complete(result Status) {
	f.mu.Lock()
	f.result = result
	f.state = stateCompleted
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Wait blocks until the Future is Completed.
func (f *Future) Wait() {
	f.mu.Lock()
	for f.state != stateCompleted {
		f.cond.Wait()
	}
	f.mu.Unlock()
}

// Get returns the Future's result. Its precondition is Done(); calling it
// before completion blocks until completion instead, so a caller that
// forgets to check Done first observes a correct result late rather than
// a race.
func (f *Future) Get() Status {
	f.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
