package game

import "fmt"

// Team is the side a player is assigned to at game start.
type Team string

const (
	TeamPolice Team = "police"
	TeamThief  Team = "thief"
)

// GameStatus is the lifecycle state of a room. Transitions are linear:
// waiting -> hiding -> playing -> finished, no cycles, no reentry.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusHiding   GameStatus = "hiding"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// PlayerStatus tracks a single player's fate during a game.
type PlayerStatus string

const (
	PlayerAlive        PlayerStatus = "alive"
	PlayerCaught       PlayerStatus = "caught"
	PlayerEscaped      PlayerStatus = "escaped"
	PlayerDisconnected PlayerStatus = "disconnected"
)

// Visibility controls whether a room shows up in nearby discovery.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
)

// RescueMethod selects how caught thieves are freed at the jail.
// RescueTouch frees every caught teammate automatically on contact;
// RescueCallout requires the rescuer to pick a single target manually.
type RescueMethod string

const (
	RescueTouch   RescueMethod = "touch"
	RescueCallout RescueMethod = "callout"
)

func (m *RescueMethod) UnmarshalText(text []byte) error {
	switch RescueMethod(text) {
	case RescueTouch:
		*m = RescueTouch
	case RescueCallout:
		*m = RescueCallout
	default:
		return fmt.Errorf("unknown rescue method: %s", text)
	}
	return nil
}
