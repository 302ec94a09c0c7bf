// Package bench runs independent pool benchmark scenarios concurrently
// and aggregates their outcomes, for use by cmd/flockbench. Its shape is
// a plain structured-concurrency pattern for fanning out goroutines and
// collecting errors: a WaitGroup for completion, a mutex-guarded slice for collected
// failures, and an ErrorMode controlling whether the runner fails fast,
// collects everything, or ignores failures outright.
package bench

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/tahsin716/flock"
)

// ErrorMode controls how Runner.Wait reports scenario failures.
type ErrorMode int

const (
	// CollectAll runs every scenario to completion and returns every
	// failure as an AggregateError.
	CollectAll ErrorMode = iota
	// FailFast returns the first failure encountered; other scenarios
	// still run to completion (scenarios have no cancellation hook, the
	// same way a flock.Job cannot be canceled once submitted).
	FailFast
	// IgnoreErrors discards scenario failures entirely.
	IgnoreErrors
)

// Scenario is one independent benchmark run against a *flock.Pool.
type Scenario func(pool *flock.Pool) flock.Status

// PanicError wraps a scenario panic recovered by Runner.
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", p.Value, p.Stack)
}

// AggregateError wraps every failure collected in CollectAll mode.
type AggregateError struct {
	Errors []error
}

func (a AggregateError) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}
	return fmt.Sprintf("%d scenario(s) failed: %v", len(a.Errors), a.Errors)
}

func (a AggregateError) Unwrap() []error {
	return a.Errors
}

// Runner fans Scenarios out over one *flock.Pool and aggregates their
// results according to its ErrorMode.
type Runner struct {
	pool *flock.Pool
	mode ErrorMode

	wg        sync.WaitGroup
	errsMu    sync.Mutex
	errs      []error
	firstErr  atomic.Value
	failOnce  sync.Once
	completed atomic.Int64
}

// NewRunner builds a Runner that drives scenarios against pool.
func NewRunner(pool *flock.Pool, mode ErrorMode) *Runner {
	return &Runner{pool: pool, mode: mode}
}

// Go starts scenario in its own goroutine.
func (r *Runner) Go(scenario Scenario) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.handleError(&PanicError{Value: rec, Stack: string(debug.Stack())})
			}
		}()

		status := scenario(r.pool)
		r.completed.Add(1)
		if !status.Ok() {
			r.handleError(status.Unwrap())
		}
	}()
}

// Wait blocks until every started Scenario has returned, then reports the
// aggregated outcome according to the Runner's ErrorMode.
func (r *Runner) Wait() error {
	r.wg.Wait()

	switch r.mode {
	case IgnoreErrors:
		return nil
	case FailFast:
		if v := r.firstErr.Load(); v != nil {
			return v.(error)
		}
		return nil
	default: // CollectAll
		r.errsMu.Lock()
		errs := make([]error, len(r.errs))
		copy(errs, r.errs)
		r.errsMu.Unlock()
		if len(errs) == 0 {
			return nil
		}
		return AggregateError{Errors: errs}
	}
}

// Completed returns how many scenarios have returned a Status so far; a
// scenario that panicked is not counted.
func (r *Runner) Completed() int64 {
	return r.completed.Load()
}

func (r *Runner) handleError(err error) {
	if err == nil {
		return
	}
	switch r.mode {
	case IgnoreErrors:
		return
	case FailFast:
		if r.firstErr.Load() == nil {
			r.firstErr.CompareAndSwap(nil, err)
		}
	default: // CollectAll
		r.errsMu.Lock()
		r.errs = append(r.errs, err)
		r.errsMu.Unlock()
	}
}
