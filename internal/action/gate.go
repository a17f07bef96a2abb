package action

import (
	"sync"

	"github.com/nhle/teaminbox/internal/model"
)

// Gate is the single-slot confirmation dialog guarding declines. It is
// either closed or open with one subject; opening it again replaces the
// subject rather than queueing a second confirmation.
type Gate struct {
	mu      sync.Mutex
	subject *model.Notification
}

// Open opens the gate for n, replacing any current subject.
func (g *Gate) Open(n model.Notification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subject = &n
}

// IsOpen reports whether a confirmation is pending.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subject != nil
}

// Subject returns the notification awaiting confirmation.
func (g *Gate) Subject() (model.Notification, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subject == nil {
		return model.Notification{}, false
	}
	return *g.subject, true
}

// Cancel closes the gate without acting. It reports whether it was open.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	wasOpen := g.subject != nil
	g.subject = nil
	return wasOpen
}

// take closes the gate and returns its subject.
func (g *Gate) take() (model.Notification, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subject == nil {
		return model.Notification{}, false
	}
	n := *g.subject
	g.subject = nil
	return n, true
}
