package flock

// config holds the options a pool is constructed with. The only thing a
// pool strictly needs is the concurrency level, passed positionally to
// New; everything here is ambient (logging, hooks) and optional.
type config struct {
	logger Logger

	// panicHandler, if set, is invoked with the recovered panic value
	// whenever a Job panics instead of returning a Status. It runs after
	// the panic has already been converted into an Error status for the
	// task's Future, so it never changes what a waiter observes.
	panicHandler func(recovered any)

	// onWorkerStart and onWorkerStop are lifecycle hooks, invoked on the
	// worker's own goroutine.
	onWorkerStart func(workerID int)
	onWorkerStop  func(workerID int)
}

func defaultConfig() config {
	return config{
		logger: defaultLogger(),
	}
}

// validate checks cfg and the concurrency level it will be paired with
// for internal consistency, returning a *PoolError on misconfiguration.
// concurrencyLevel is passed in rather than stored on config because it
// is supplied positionally to Init/New rather than through an Option;
// validating it here keeps Init's single call to validate() the one
// place a misconfigured pool is rejected, matching the rest of cfg's
// fields even though none of today's options have an invalid value.
func (c config) validate(concurrencyLevel uint64) error {
	if concurrencyLevel == 0 {
		return errInvalidConcurrency()
	}
	return nil
}

// Option configures a Pool at construction time.
type Option func(*config)

// WithLogger overrides the pool's logging sink. A nil logger is treated
// as a no-op logger rather than panicking on first use.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = noopLogger{}
		}
		c.logger = logger
	}
}

// WithPanicHandler registers a callback invoked whenever a submitted Job
// panics. If unset, panics are only recorded as an Error status on the
// task's Future and logged; they never propagate across the goroutine
// boundary.
func WithPanicHandler(handler func(recovered any)) Option {
	return func(c *config) {
		c.panicHandler = handler
	}
}

// WithWorkerLifecycleHooks registers callbacks invoked when a worker
// goroutine starts and stops, useful for tracing or per-worker setup.
func WithWorkerLifecycleHooks(onStart, onStop func(workerID int)) Option {
	return func(c *config) {
		c.onWorkerStart = onStart
		c.onWorkerStop = onStop
	}
}
