package invite

import (
	"sort"
	"sync"
)

// State is the local state of an accept/decline action for one
// notification id.
type State int

const (
	// StateIdle means no action has been attempted.
	StateIdle State = iota
	// StateProcessing means exactly one action is in flight.
	StateProcessing
	// StateProcessed means the action succeeded. It is terminal.
	StateProcessed
	// StateFailed means the last attempt failed; a retry is allowed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateProcessed:
		return "processed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type entry struct {
	state State
	// hold keeps the processing indicator up after success.
	hold bool
}

// Overlay is the session-scoped optimistic state laid over the server
// feed. Each id has a single state, so an id can never be processing and
// processed at once. It is safe for concurrent use.
type Overlay struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[string]*entry)}
}

// State returns the current state of id.
func (o *Overlay) State(id string) State {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e, ok := o.entries[id]; ok {
		return e.state
	}
	return StateIdle
}

// Begin moves id to processing. It reports false, changing nothing, when
// id is already processing or processed.
func (o *Overlay) Begin(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		o.entries[id] = &entry{state: StateProcessing}
		return true
	}
	if e.state == StateProcessing || e.state == StateProcessed {
		return false
	}
	e.state = StateProcessing
	e.hold = false
	return true
}

// Complete moves id from processing to processed and raises the display
// hold. It reports false when id was not processing.
func (o *Overlay) Complete(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok || e.state != StateProcessing {
		return false
	}
	e.state = StateProcessed
	e.hold = true
	return true
}

// Fail moves id from processing to failed. It reports false when id was
// not processing.
func (o *Overlay) Fail(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok || e.state != StateProcessing {
		return false
	}
	e.state = StateFailed
	return true
}

// Release lowers the display hold raised by Complete.
func (o *Overlay) Release(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e, ok := o.entries[id]; ok {
		e.hold = false
	}
}

// IsProcessed reports whether an action for id succeeded this session.
func (o *Overlay) IsProcessed(id string) bool {
	return o.State(id) == StateProcessed
}

// IsProcessing reports whether an action for id is in flight.
func (o *Overlay) IsProcessing(id string) bool {
	return o.State(id) == StateProcessing
}

// Busy reports whether the processing indicator should be shown for id:
// while the action is in flight and during the hold after success.
func (o *Overlay) Busy(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return false
	}
	return e.state == StateProcessing || (e.state == StateProcessed && e.hold)
}

// Processing returns the ids currently in flight, sorted.
func (o *Overlay) Processing() []string {
	return o.idsIn(StateProcessing)
}

// Processed returns the ids whose action succeeded, sorted.
func (o *Overlay) Processed() []string {
	return o.idsIn(StateProcessed)
}

func (o *Overlay) idsIn(s State) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var ids []string
	for id, e := range o.entries {
		if e.state == s {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
