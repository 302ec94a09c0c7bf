package flock

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// agentRegistry is the process-wide mapping from execution-agent identity
// to the pool that owns it. It is consulted by the wait routine to decide
// which pool's stack a helping waiter should drain. Entries exist only
// while the pool owning the agent is live: a pool registers each of its
// workers on Init and unregisters them in Terminate, before joining.
type agentRegistry struct {
	mu      sync.Mutex
	entries map[uint64]*Pool
}

func newAgentRegistry() *agentRegistry {
	return &agentRegistry{entries: make(map[uint64]*Pool)}
}

// globalRegistry is the single process-wide registry instance. Every Pool
// registers and unregisters its workers against this one structure, which
// is what lets a worker of pool A discover, while running a task, that it
// belongs to A even though the call stack it is running on was entered
// through pool B's Wait routine.
var globalRegistry = newAgentRegistry()

func (r *agentRegistry) register(agentID uint64, pool *Pool) {
	r.mu.Lock()
	r.entries[agentID] = pool
	r.mu.Unlock()
}

func (r *agentRegistry) unregister(agentID uint64) {
	r.mu.Lock()
	delete(r.entries, agentID)
	r.mu.Unlock()
}

func (r *agentRegistry) lookup(agentID uint64) (*Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.entries[agentID]
	return p, ok
}

// currentGoroutineID returns an identifier for the calling goroutine. Go
// exposes no public thread/goroutine id and no thread-local storage, so
// this reads the id the runtime itself prints at the head of a stack
// trace ("goroutine 123 [running]:") — the same technique Go's own race
// detector and several ecosystem debugging libraries use to recover
// per-goroutine identity without cooperation from the scheduler. It is
// called rarely — once per worker at startup, and once per WaitOne call
// from whichever goroutine is waiting — never on the hot per-task path,
// so the cost of formatting a small stack trace is immaterial.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0
	}
	line = line[len(prefix):]
	end := bytes.IndexByte(line, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(line[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
