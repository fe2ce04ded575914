package evaluator

import (
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
)

// Catches runs one catch evaluation pass for a police actor. Every
// alive thief whose last-known location is within CatchDistance of
// self is caught in the same pass; peers with no known location are
// skipped this round. The room replica is mutated (target status,
// actor counter) and the caught players are returned so the caller can
// publish the transitions.
//
// Returns nil when the actor is not an alive police player.
func Catches(r *game.Room, actorID string, self geo.Location, peerLocs map[string]geo.Location) []*game.Player {
	actor := r.Player(actorID)
	if actor == nil || actor.Team != game.TeamPolice || actor.Status != game.PlayerAlive {
		return nil
	}

	var caught []*game.Player
	for _, p := range r.Players {
		if p.ID == actorID || p.Team != game.TeamThief || p.Status != game.PlayerAlive {
			continue
		}
		loc, ok := peerLocs[p.ID]
		if !ok {
			continue // no data yet for this peer
		}
		if geo.Distance(self, loc) > CatchDistance {
			continue
		}

		p.Status = game.PlayerCaught
		actor.AddCatch()
		caught = append(caught, p)
	}
	return caught
}

// RescueOutcome is the result of one rescue evaluation pass.
type RescueOutcome struct {
	// Rescued holds the freed teammates (touch method only).
	Rescued []*game.Player

	// Prompt is set for the call-out method: the actor is at the jail
	// with caught teammates present and must pick a target manually.
	Prompt []*game.Player
}

// Rescue runs one rescue evaluation pass for a thief actor standing
// near the jail. With the touch method every caught teammate is freed
// at once; with call-out nothing happens automatically and the caught
// teammates are returned as a selection prompt instead.
func Rescue(r *game.Room, actorID string, self geo.Location) RescueOutcome {
	actor := r.Player(actorID)
	if actor == nil || actor.Team != game.TeamThief || actor.Status != game.PlayerAlive {
		return RescueOutcome{}
	}
	if !r.Settings.RescueEnabled || r.Settings.JailLocation == nil {
		return RescueOutcome{}
	}
	if geo.Distance(self, *r.Settings.JailLocation) > RescueDistance {
		return RescueOutcome{}
	}

	caught := r.CaughtThieves()
	if len(caught) == 0 {
		return RescueOutcome{}
	}

	if r.Settings.RescueMethod == game.RescueCallout {
		return RescueOutcome{Prompt: caught}
	}

	for _, p := range caught {
		p.Status = game.PlayerAlive
		actor.AddRescue()
	}
	return RescueOutcome{Rescued: caught}
}

// RescueOne frees a single caught teammate, the explicit action behind
// the call-out prompt. The actor must be an alive thief and the target
// currently caught.
func RescueOne(r *game.Room, actorID, targetID string) (*game.Player, bool) {
	actor := r.Player(actorID)
	if actor == nil || actor.Team != game.TeamThief || actor.Status != game.PlayerAlive {
		return nil, false
	}
	if !r.Settings.RescueEnabled {
		return nil, false
	}

	target := r.Player(targetID)
	if target == nil || target.Status != game.PlayerCaught {
		return nil, false
	}

	target.Status = game.PlayerAlive
	actor.AddRescue()
	return target, true
}
