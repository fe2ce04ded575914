package messaging

import "fmt"

// Subject layout for one game, keyed by room code:
//
//	games.<code>.status                  room lifecycle status
//	games.<code>.players.<id>.location   per-player location samples
//	games.<code>.players.<id>.status     per-player status changes
//	games.<code>.players.<id>.lastseen   presence heartbeats
//
// Per-player keys are independent subjects so high-frequency location
// traffic never contends with room-level writes. Room document changes
// ride the lifecycle subject: observers refetch the document from the
// repository when the status moves.

func RoomStatusSubject(code string) string {
	return fmt.Sprintf("games.%s.status", code)
}

func PlayerLocationSubject(code, playerID string) string {
	return fmt.Sprintf("games.%s.players.%s.location", code, playerID)
}

func PlayerStatusSubject(code, playerID string) string {
	return fmt.Sprintf("games.%s.players.%s.status", code, playerID)
}

func PlayerLastSeenSubject(code, playerID string) string {
	return fmt.Sprintf("games.%s.players.%s.lastseen", code, playerID)
}

// AllPlayerSubjects matches every per-player key in a game.
func AllPlayerSubjects(code string) string {
	return fmt.Sprintf("games.%s.players.>", code)
}

// AllGameSubjects matches every key in every game. The presence
// watchdog listens here so it needs no per-game registration.
func AllGameSubjects() string {
	return "games.>"
}
