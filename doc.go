// Package flock provides a re-entrant worker pool for Go.
//
// Unlike a textbook pool, flock lets a goroutine that is waiting on a
// submitted task keep doing useful work from the same pool instead of
// blocking outright. This matters when tasks recursively submit child
// tasks and then wait on them: a naive pool deadlocks the moment
// concurrency is exhausted, because every worker is parked waiting on a
// handle and nothing is left to run the work that handle depends on.
// flock's waiters help drain the pool's task stack while they wait, so
// recursive submission always makes forward progress.
//
// # Quick Start
//
//	pool, err := flock.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Terminate()
//
//	future := pool.Submit(func() flock.Status {
//	    return flock.OK()
//	})
//	if st := pool.WaitOne(future); !st.Ok() {
//	    log.Println(st.Error())
//	}
//
// # Recursive submission
//
// A task running on the pool may itself call Submit and then wait on the
// resulting futures through WaitOne, WaitAll or WaitAllStatus from inside
// its own closure (Future.Wait only blocks; it does not help). The waiting goroutine
// — whether it is one of the pool's own workers or an arbitrary caller —
// pops and runs pending work from the same task stack (LIFO) while it
// waits, rather than blocking immediately. This bounds the effective
// recursion depth: children run to completion before their ancestors
// resume waiting.
//
// # Concurrency level and the N-1 rule
//
// New(n) spawns n-1 worker goroutines, not n. The caller of Wait*
// contributes the nth unit of parallelism by running tasks itself while
// it waits. A pool initialized with concurrency 1 has no workers at all:
// Submit runs the closure synchronously, on the caller, before returning.
//
// # What this pool does not do
//
// flock has no priority scheduling, no fairness guarantee beyond LIFO, no
// task cancellation once submitted, no per-task timeouts, and no
// NUMA-aware placement. Submitted work always runs to completion;
// Terminate waits for everything already on the stack (or already
// running) to finish before returning.
package flock
