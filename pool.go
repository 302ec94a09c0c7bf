package flock

import (
	"sync"
	"sync/atomic"
)

// Pool is a re-entrant worker pool: a fixed set of workers draining a
// shared LIFO task stack, plus the wait routine that lets any goroutine —
// worker or not — help drain that stack while it waits instead of merely
// blocking. See the package doc for the re-entrancy contract.
type Pool struct {
	cfg config

	mu            sync.Mutex // guards the fields below
	concurrency   uint64
	workers       []*worker
	terminated    bool
	stack         *taskStack
	wg            sync.WaitGroup
	terminateOnce sync.Once
	terminatedCh  chan struct{}

	submitted atomic.Uint64
	completed atomic.Uint64
	helped    atomic.Uint64
	failed    atomic.Uint64
}

// New constructs and initializes a Pool with the given concurrency level
// in one step. It is the idiomatic Go entry point; Init exists separately
// for callers that need the uninitialized zero value first (e.g. to embed
// a Pool by value).
func New(concurrencyLevel uint64, opts ...Option) (*Pool, error) {
	p := &Pool{}
	if err := p.Init(concurrencyLevel, opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// Init brings an uninitialized Pool to life with concurrencyLevel total
// units of parallelism: concurrencyLevel-1 worker goroutines are spawned,
// and the calling thread contributes the remaining unit whenever it waits
// on a handle. Init(0) fails without starting anything. If any worker
// fails to spawn, every already-spawned worker is torn down and the first
// failure is returned; the pool is left in its pre-Init state.
//
// Go's goroutines do not fail to start the way OS threads occasionally
// can, so the spawn loop here cannot itself produce an error in practice;
// the error return exists for API symmetry with Init(0) and to leave
// room for a future agent type that might fail to spawn.
func (p *Pool) Init(concurrencyLevel uint64, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(concurrencyLevel); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cfg = cfg
	p.stack = newTaskStack()
	p.terminated = false
	p.terminateOnce = sync.Once{}
	p.terminatedCh = make(chan struct{})

	numWorkers := concurrencyLevel - 1
	workers := make([]*worker, 0, numWorkers)
	for i := uint64(0); i < numWorkers; i++ {
		w := newWorker(int(i), p)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run()
		}()
		<-w.started
		workers = append(workers, w)
	}

	p.workers = workers
	p.concurrency = concurrencyLevel
	return nil
}

// logger returns the pool's configured Logger, or a no-op one if the pool
// is a zero-value Pool that has never had Init/New applied — cfg.logger
// is only populated by defaultConfig(), which Init runs before anything
// else can observe p.
func (p *Pool) logger() Logger {
	if p.cfg.logger != nil {
		return p.cfg.logger
	}
	return noopLogger{}
}

// Submit packages job with a fresh Future and hands it to the pool.
//
// If the pool is uninitialized or has terminated, Submit returns an
// invalid Future and logs an error; it never returns a Go error, since
// submission to a dead pool is non-fatal by design.
//
// With concurrency > 1 the task is pushed onto the stack and a worker is
// signaled — the terminating check and the push happen as one operation
// under the stack's own lock (taskStack.pushIfNotTerminating), so a
// concurrent Terminate can never run to completion, workers and all, in
// the window between Submit deciding to push and the push landing. With
// concurrency == 1 there are no workers at all, so Submit runs job
// synchronously on the caller and returns an already-Completed Future —
// running it asynchronously would leave nothing to run it, and blocking
// the caller on a pool with no workers would deadlock.
func (p *Pool) Submit(job Job) *Future {
	p.mu.Lock()
	concurrency := p.concurrency
	stack := p.stack
	p.mu.Unlock()

	if concurrency == 0 {
		p.logger().Error("cannot execute task", "reason", ErrUninitialized)
		return invalidFuture()
	}

	future := newFuture()
	task := packagedTask{job: job, future: future}

	if concurrency > 1 {
		if !stack.pushIfNotTerminating(task) {
			p.logger().Error("cannot execute task", "reason", ErrTerminated)
			return invalidFuture()
		}
		p.submitted.Add(1)
		return future
	}

	// concurrency == 1: no worker exists to pick this up.
	p.mu.Lock()
	terminated := p.terminated
	p.mu.Unlock()
	if terminated {
		p.logger().Error("cannot execute task", "reason", ErrTerminated)
		return invalidFuture()
	}

	p.submitted.Add(1)
	future.markRunning()
	status := p.runSynchronously(job)
	future.complete(status)
	p.completed.Add(1)
	if !status.Ok() {
		p.failed.Add(1)
	}
	return future
}

// runSynchronously executes job on the caller with the same panic-safety
// guarantee a worker gives it.
func (p *Pool) runSynchronously(job Job) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			status = Err(panicMessage(r))
			p.logger().Error("task panicked", "worker", "caller", "recovered", r)
			if handler := p.cfg.panicHandler; handler != nil {
				handler(r)
			}
		}
	}()
	return job()
}

// Concurrency returns the configured concurrency level, or 0 if the pool
// has never been successfully initialized.
func (p *Pool) Concurrency() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.concurrency
}

// WaitOne waits for future to complete, helping drain the caller's host
// pool's task stack in the meantime. This is the re-entrant core that
// keeps recursive submission from deadlocking: see the package doc for
// the full algorithm.
//
// The host pool is whichever pool's worker set contains the calling
// goroutine, discovered through the process-wide registry; a goroutine
// that is not a worker of any pool uses p itself as its host, which is
// the common case of a caller helping drain its own submissions.
func (p *Pool) WaitOne(future *Future) Status {
	if !future.IsValid() {
		return ErrFrom(ErrInvalidFuture)
	}

	host := p.hostPool()

	for !future.Done() {
		task, ok := host.stack.pop()
		if !ok {
			break
		}
		host.runHelping(task)
		host.helped.Add(1)
	}

	future.Wait()
	return future.Get()
}

// hostPool resolves the pool whose stack the current goroutine should
// help drain while waiting: the pool registered for this goroutine's id,
// or p itself if this goroutine is not a worker of any pool.
func (p *Pool) hostPool() *Pool {
	if host, ok := globalRegistry.lookup(currentGoroutineID()); ok {
		return host
	}
	return p
}

// runHelping executes an inner task popped from the stack, exactly the
// way a worker would, and completes its Future. It runs on host (the pool
// the task was popped from), so completed/failure counters land on the
// pool the task actually belongs to.
func (host *Pool) runHelping(task packagedTask) {
	task.future.markRunning()
	status := host.runSynchronously(task.job)
	task.future.complete(status)
	host.completed.Add(1)
	if !status.Ok() {
		host.failed.Add(1)
	}
}

// WaitAll waits on every future in order and returns the first non-Ok
// Status encountered. It does not short-circuit: every future is waited
// on, so the remaining results are still available through
// WaitAllStatus even after an error has been found.
func (p *Pool) WaitAll(futures []*Future) Status {
	statuses := p.WaitAllStatus(futures)
	for _, st := range statuses {
		if !st.Ok() {
			return st
		}
	}
	return OK()
}

// WaitAllStatus waits on every future in order and returns one Status per
// future, preserving input order. An invalid future contributes the
// synthetic ErrInvalidFuture status without blocking. Every non-Ok status
// is logged.
func (p *Pool) WaitAllStatus(futures []*Future) []Status {
	statuses := make([]Status, len(futures))
	for i, future := range futures {
		if !future.IsValid() {
			p.logger().Error("waiting on invalid task future")
			statuses[i] = ErrFrom(ErrInvalidFuture)
			continue
		}
		status := p.WaitOne(future)
		if !status.Ok() {
			p.logger().Error("task failed", "error", status.Error())
		}
		statuses[i] = status
	}
	return statuses
}

// Terminate signals every worker to exit, unregisters them from the
// process-wide registry, joins them, and clears the worker set. It is
// idempotent and safe to call concurrently or more than once; only the
// first call does anything.
//
// Registry entries are removed before any worker is joined. A concurrent
// WaitOne running on one of this pool's workers resolves its host once,
// when it starts: either it still finds itself registered (and helps
// drain this pool's stack until the stack is empty, then blocks on its
// own awaited future), or its entry is already gone and, like any
// unregistered goroutine, it helps drain the pool whose WaitOne it called
// instead. Either way the awaited future is still run to completion by
// whichever agent is executing it.
func (p *Pool) Terminate() {
	p.mu.Lock()
	stack := p.stack
	workers := p.workers
	done := p.terminatedCh
	p.mu.Unlock()

	if stack == nil {
		return
	}

	p.terminateOnce.Do(func() {
		p.mu.Lock()
		p.terminated = true
		p.mu.Unlock()

		stack.signalTerminate()

		for _, w := range workers {
			globalRegistry.unregister(w.agentID)
		}

		p.wg.Wait()

		p.mu.Lock()
		p.workers = nil
		p.mu.Unlock()

		close(done)
	})

	<-done
}

// Stats returns a snapshot of pool-wide counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	numWorkers := len(p.workers)
	stack := p.stack
	p.mu.Unlock()

	pending := 0
	if stack != nil {
		pending = stack.len()
	}

	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Helped:    p.helped.Load(),
		Failed:    p.failed.Load(),
		Workers:   numWorkers,
		Pending:   pending,
	}
}

// Len reports the current depth of the pool's task stack.
func (p *Pool) Len() int {
	p.mu.Lock()
	stack := p.stack
	p.mu.Unlock()
	if stack == nil {
		return 0
	}
	return stack.len()
}
