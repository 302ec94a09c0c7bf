package flock

// Stats is a snapshot of pool-wide counters, taken without locking the
// hot submit/wait paths. Values may be slightly stale under concurrent
// load.
type Stats struct {
	// Submitted is the total number of Jobs submitted since Init.
	Submitted uint64

	// Completed is the total number of Jobs that have finished running,
	// whether via a worker, a helping waiter, or synchronous execution on
	// concurrency-1 pools.
	Completed uint64

	// Helped is the number of Jobs that were run by a goroutine helping
	// drain this pool's stack from inside WaitOne while it waited on
	// something else, rather than by a worker's own run loop. The helping
	// goroutine may itself be one of the pool's workers.
	Helped uint64

	// Failed is the number of completed Jobs whose Status was not Ok,
	// including panics recovered and converted to an Error status.
	Failed uint64

	// Workers is the number of worker goroutines currently owned by the
	// pool (concurrency-1, or 0 before Init / after Terminate).
	Workers int

	// Pending is the current depth of the task stack.
	Pending int
}
