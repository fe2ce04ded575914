package messaging

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSubjects(t *testing.T) {
	testutil.AssertEqual(t, "room status", RoomStatusSubject("ABC234"), "games.ABC234.status")
	testutil.AssertEqual(t, "location", PlayerLocationSubject("ABC234", "p1"), "games.ABC234.players.p1.location")
	testutil.AssertEqual(t, "status", PlayerStatusSubject("ABC234", "p1"), "games.ABC234.players.p1.status")
	testutil.AssertEqual(t, "lastseen", PlayerLastSeenSubject("ABC234", "p1"), "games.ABC234.players.p1.lastseen")
	testutil.AssertEqual(t, "wildcard", AllPlayerSubjects("ABC234"), "games.ABC234.players.>")
	testutil.AssertEqual(t, "all games", AllGameSubjects(), "games.>")
}
