package session

import "github.com/wpals0817-max/policenthief/internal/game"

// Notifier receives player-visible game events. Implementations render
// them however the surface wants; the session never blocks on them.
type Notifier interface {
	// BoundaryWarning fires at fixed points of an out-of-bounds window
	// with the seconds left before elimination.
	BoundaryWarning(remaining int)

	// Eliminated fires once when the local player is removed for
	// staying out of bounds.
	Eliminated()

	// Caught fires for each thief the local police player catches.
	Caught(target *game.Player)

	// Rescued fires when the local thief frees caught teammates.
	Rescued(freed []*game.Player)

	// RescuePrompt fires with the call-out rescue method when the
	// local thief reaches the jail: the player picks a target manually
	// via RescueOne.
	RescuePrompt(candidates []*game.Player)

	// GameStatusChanged fires on hiding/playing transitions.
	GameStatusChanged(status game.GameStatus)

	// GameFinished fires exactly once per game.
	GameFinished(winner game.Team)

	// LocationError surfaces position-source failures. Permission and
	// timeout errors are retryable user states, not fatal.
	LocationError(err error)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) BoundaryWarning(int)                {}
func (NopNotifier) Eliminated()                        {}
func (NopNotifier) Caught(*game.Player)                {}
func (NopNotifier) Rescued([]*game.Player)             {}
func (NopNotifier) RescuePrompt([]*game.Player)        {}
func (NopNotifier) GameStatusChanged(game.GameStatus)  {}
func (NopNotifier) GameFinished(game.Team)             {}
func (NopNotifier) LocationError(error)                {}
