package bench

import (
	"strings"
	"testing"

	"github.com/tahsin716/flock"
)

func newTestPool(t *testing.T) *flock.Pool {
	t.Helper()
	pool, err := flock.New(4)
	if err != nil {
		t.Fatalf("flock.New(4) error = %v", err)
	}
	t.Cleanup(pool.Terminate)
	return pool
}

func TestRunner_CollectAllAggregatesEveryFailure(t *testing.T) {
	pool := newTestPool(t)
	r := NewRunner(pool, CollectAll)

	r.Go(func(*flock.Pool) flock.Status { return flock.OK() })
	r.Go(func(*flock.Pool) flock.Status { return flock.Err("scenario failed") })
	r.Go(func(*flock.Pool) flock.Status { return flock.Err("scenario also failed") })

	err := r.Wait()
	if err == nil {
		t.Fatal("Wait() = nil, want an aggregate error")
	}
	agg, ok := err.(AggregateError)
	if !ok {
		t.Fatalf("Wait() error type = %T, want AggregateError", err)
	}
	if len(agg.Errors) != 2 {
		t.Fatalf("len(agg.Errors) = %d, want 2", len(agg.Errors))
	}
	if r.Completed() != 3 {
		t.Fatalf("Completed() = %d, want 3", r.Completed())
	}
}

func TestRunner_FailFastReturnsOnlyFirstError(t *testing.T) {
	pool := newTestPool(t)
	r := NewRunner(pool, FailFast)

	r.Go(func(*flock.Pool) flock.Status { return flock.Err("only error") })
	r.Go(func(*flock.Pool) flock.Status { return flock.OK() })

	err := r.Wait()
	if err == nil {
		t.Fatal("Wait() = nil, want an error")
	}
	if !strings.Contains(err.Error(), "only error") {
		t.Errorf("Wait() error = %q, want it to mention %q", err.Error(), "only error")
	}
}

func TestRunner_IgnoreErrorsDiscardsFailures(t *testing.T) {
	pool := newTestPool(t)
	r := NewRunner(pool, IgnoreErrors)

	r.Go(func(*flock.Pool) flock.Status { return flock.Err("ignored") })

	if err := r.Wait(); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
}

func TestRunner_RecoversScenarioPanic(t *testing.T) {
	pool := newTestPool(t)
	r := NewRunner(pool, CollectAll)

	r.Go(func(*flock.Pool) flock.Status {
		panic("scenario panic")
	})

	err := r.Wait()
	if err == nil {
		t.Fatal("Wait() = nil, want a PanicError wrapped in an AggregateError")
	}
	if !strings.Contains(err.Error(), "scenario panic") {
		t.Errorf("Wait() error = %q, want it to mention the panic value", err.Error())
	}
}

func TestRunner_ScenariosCanUseThePool(t *testing.T) {
	pool := newTestPool(t)
	r := NewRunner(pool, CollectAll)

	r.Go(func(p *flock.Pool) flock.Status {
		future := p.Submit(func() flock.Status { return flock.OK() })
		return p.WaitOne(future)
	})

	if err := r.Wait(); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
}
