package evaluator

import (
	"github.com/wpals0817-max/policenthief/internal/geo"
)

// BoundaryEvent classifies the outcome of one boundary check.
type BoundaryEvent int

const (
	BoundaryOK BoundaryEvent = iota
	BoundaryViolating
	BoundaryWarning
	BoundaryEliminated
)

// BoundaryResult is one check's verdict. Remaining is the seconds left
// before elimination, meaningful for warnings.
type BoundaryResult struct {
	Event     BoundaryEvent
	Remaining int
}

// BoundaryState carries the consecutive out-of-bounds counter between
// 1-second checks for the local player.
type BoundaryState struct {
	seconds int
}

// Check evaluates the local player's position against the geofence.
// The elimination limit is the boundary radius plus the configured
// allowance; re-entering at any point resets the counter to zero.
// After an elimination the counter resets, so the event fires exactly
// once per violation window.
func (b *BoundaryState) Check(self, center geo.Location, radius, allowance float64) BoundaryResult {
	if geo.WithinBoundary(self, center, radius+allowance) {
		b.seconds = 0
		return BoundaryResult{Event: BoundaryOK}
	}

	b.seconds++

	switch {
	case b.seconds >= OutOfBoundsLimit:
		b.seconds = 0
		return BoundaryResult{Event: BoundaryEliminated}
	case b.seconds == firstWarningAt, b.seconds == secondWarningAt:
		return BoundaryResult{Event: BoundaryWarning, Remaining: OutOfBoundsLimit - b.seconds}
	default:
		return BoundaryResult{Event: BoundaryViolating, Remaining: OutOfBoundsLimit - b.seconds}
	}
}

// Seconds returns how long the player has currently been out of
// bounds, for the on-screen countdown.
func (b *BoundaryState) Seconds() int {
	return b.seconds
}
