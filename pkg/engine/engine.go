package engine

import (
	"sync/atomic"
	"time"
)

// Engine is the single-writer, many-reader state holder. One poll cycle
// builds a Snapshot and calls Publish; every read-API method loads the
// current pointer and answers from it without ever blocking the writer.
type Engine struct {
	current atomic.Pointer[Snapshot]
	refresh chan struct{}

	detector *detector
}

// New returns an Engine with no snapshot published yet; every read method
// returns zero values until the first Publish.
func New() *Engine {
	return &Engine{
		refresh:  make(chan struct{}, 1),
		detector: newDetector(),
	}
}

// Publish atomically swaps in a newly built snapshot. Safe to call from the
// poll cycle goroutine while readers are concurrently querying.
func (e *Engine) Publish(snap *Snapshot) {
	e.current.Store(snap)
}

// Snapshot returns the currently published snapshot, or nil if no cycle has
// completed yet.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// DetectEvents compares snap against the previous cycle's remembered state
// and returns the events this transition produced, in the fixed order:
// offline transitions, online transitions, mismatch transitions, then port
// error trend notifications. It updates the engine's remembered state as a
// side effect, so it must be called exactly once per published cycle.
func (e *Engine) DetectEvents(snap *Snapshot, now time.Time) []Event {
	return e.detector.detect(snap, now)
}

// TriggerRefresh requests an out-of-cycle poll. Non-blocking: a refresh
// already pending is not queued twice.
func (e *Engine) TriggerRefresh() {
	select {
	case e.refresh <- struct{}{}:
	default:
	}
}

// RefreshRequests exposes the channel the orchestrator selects on to learn
// about TriggerRefresh calls.
func (e *Engine) RefreshRequests() <-chan struct{} {
	return e.refresh
}
