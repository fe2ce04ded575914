package game

import (
	"math/rand"
	"time"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// The lifecycle functions below are pure transitions over the room
// value with time passed in, so they are testable without timers. Each
// client applies the timer-derived transitions (hiding expiry, game
// time up) independently; since they derive from the same shared
// StartedAt and settings, all replicas converge on the same result.

// Start moves a waiting room into the hiding phase: teams are
// assigned, the geofence is centered on the host's current position
// and StartedAt is recorded.
func Start(r *Room, hostLocation *geo.Location, rng *rand.Rand, now time.Time) error {
	if r.Status != StatusWaiting {
		return ErrBadTransition
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if hostLocation == nil {
		return ErrNoHostLocation
	}

	AssignTeams(r, rng)

	center := *hostLocation
	r.CenterLocation = &center
	started := now
	r.StartedAt = &started
	r.Status = StatusHiding
	return nil
}

// HidingDeadline returns when the hiding countdown ends.
func HidingDeadline(r *Room) time.Time {
	if r.StartedAt == nil {
		return time.Time{}
	}
	return r.StartedAt.Add(r.Settings.HidingTime)
}

// GameDeadline returns when the pursuit timer ends.
func GameDeadline(r *Room) time.Time {
	if r.StartedAt == nil {
		return time.Time{}
	}
	return r.StartedAt.Add(r.Settings.HidingTime + r.Settings.GameTime)
}

// AdvanceHiding moves hiding -> playing once the countdown has
// elapsed. Returns true when the transition fired.
func AdvanceHiding(r *Room, now time.Time) bool {
	if r.Status != StatusHiding || r.StartedAt == nil {
		return false
	}
	if now.Before(HidingDeadline(r)) {
		return false
	}
	r.Status = StatusPlaying
	return true
}

// Finish terminates the game exactly once, recording the winner.
func Finish(r *Room, winner Team, now time.Time) error {
	if r.Status == StatusFinished {
		return ErrBadTransition
	}
	r.Status = StatusFinished
	finished := now
	r.FinishedAt = &finished
	r.Winner = winner
	return nil
}

// ArbitrateTimeUp decides the winner when the game timer expires:
// thieves win if any of them is still alive.
func ArbitrateTimeUp(r *Room) Team {
	if len(r.AliveThieves()) > 0 {
		return TeamThief
	}
	return TeamPolice
}

// CheckPoliceSweep ends the game immediately with a police win when no
// thief remains alive. Called after every catch and on boundary
// eliminations; returns true when the game finished.
func CheckPoliceSweep(r *Room, now time.Time) bool {
	if r.Status != StatusPlaying {
		return false
	}
	if len(r.AliveThieves()) > 0 {
		return false
	}
	_ = Finish(r, TeamPolice, now)
	return true
}

// CheckTimeUp ends the game when the pursuit timer has expired.
// Returns true when the game finished.
func CheckTimeUp(r *Room, now time.Time) bool {
	if r.Status != StatusPlaying || r.StartedAt == nil {
		return false
	}
	if now.Before(GameDeadline(r)) {
		return false
	}
	_ = Finish(r, ArbitrateTimeUp(r), now)
	return true
}
