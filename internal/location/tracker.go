package location

import (
	"sync"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// Tracker keeps the local, unthrottled history of every sample in the
// current game session. It feeds own-route rendering and the
// post-game distance summary, and is independent from the published
// stream.
type Tracker struct {
	mu      sync.RWMutex
	history []geo.Location
	total   float64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends a sample and accumulates the hop distance from the
// previous one. Total distance never decreases within a session.
func (t *Tracker) Record(loc geo.Location) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.history); n > 0 {
		t.total += geo.Distance(t.history[n-1], loc)
	}
	t.history = append(t.history, loc)
}

// TotalDistance returns the accumulated meters traveled this session.
func (t *Tracker) TotalDistance() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Latest returns the most recent sample and whether one exists.
func (t *Tracker) Latest() (geo.Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.history) == 0 {
		return geo.Location{}, false
	}
	return t.history[len(t.history)-1], true
}

// Route returns a copy of the full sample history.
func (t *Tracker) Route() []geo.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()

	route := make([]geo.Location, len(t.history))
	copy(route, t.history)
	return route
}

// Reset clears history and distance. Called exactly at session start.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
	t.total = 0
}
