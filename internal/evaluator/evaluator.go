// Package evaluator derives discrete game events from continuous
// position data. Every participating client runs these checks locally
// against its replica of the shared game state; there is no central
// arbiter. Two police clients may therefore both claim a catch on the
// same thief inside one evaluation window, resolved last-write-wins by
// the store. That race is an accepted property of the design, not
// something this package hides.
package evaluator

import "time"

const (
	// CatchDistance is how close a police player must be to an alive
	// thief for an automatic catch, in meters.
	CatchDistance = 5.0

	// RescueDistance is how close a thief must be to the jail to free
	// caught teammates, in meters.
	RescueDistance = 3.0

	// OutOfBoundsLimit is how many consecutive boundary checks a
	// player may fail before elimination.
	OutOfBoundsLimit = 15

	// BoundaryInterval and ProximityInterval are the check cadences
	// while a game is in the playing state.
	BoundaryInterval  = 1 * time.Second
	ProximityInterval = 2 * time.Second
)

// Boundary warning checkpoints: counter values at which the player is
// warned, expressed as seconds into the violation window.
const (
	firstWarningAt  = 5
	secondWarningAt = 10
)
