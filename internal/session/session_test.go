package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/statestore"
)

// syncBus delivers publications to matching subscribers in the calling
// goroutine.
type syncBus struct {
	mu   sync.Mutex
	subs map[int]busSub
	next int
}

type busSub struct {
	subject string
	handler func(subject string, data []byte)
}

func newSyncBus() *syncBus {
	return &syncBus{subs: map[int]busSub{}}
}

func (b *syncBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	subs := make([]busSub, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if matchSubject(s.subject, subject) {
			s.handler(subject, data)
		}
	}
	return nil
}

func (b *syncBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	return b.SubscribeWithSubject(subject, func(_ string, data []byte) { handler(data) })
}

func (b *syncBus) SubscribeWithSubject(subject string, handler func(subject string, data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = busSub{subject: subject, handler: handler}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}, nil
}

func matchSubject(pattern, subject string) bool {
	if strings.HasSuffix(pattern, ".>") {
		return strings.HasPrefix(subject, strings.TrimSuffix(pattern, ">"))
	}
	return pattern == subject
}

type stubSource struct {
	loc geo.Location
}

func (s *stubSource) Current(ctx context.Context) (geo.Location, error) {
	return s.loc, nil
}

func (s *stubSource) Watch(ctx context.Context) (<-chan geo.Location, <-chan error, error) {
	locs := make(chan geo.Location)
	errs := make(chan error)
	go func() {
		<-ctx.Done()
		close(locs)
		close(errs)
	}()
	return locs, errs, nil
}

// recordingNotifier captures events for assertions.
type recordingNotifier struct {
	NopNotifier

	mu         sync.Mutex
	warnings   []int
	eliminated int
	caught     []string
	rescued    []string
	prompts    int
	statuses   []game.GameStatus
	finished   []game.Team
}

func (n *recordingNotifier) BoundaryWarning(remaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, remaining)
}

func (n *recordingNotifier) Eliminated() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eliminated++
}

func (n *recordingNotifier) Caught(target *game.Player) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.caught = append(n.caught, target.ID)
}

func (n *recordingNotifier) Rescued(freed []*game.Player) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, p := range freed {
		n.rescued = append(n.rescued, p.ID)
	}
}

func (n *recordingNotifier) RescuePrompt(candidates []*game.Player) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts++
}

func (n *recordingNotifier) GameStatusChanged(status game.GameStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

func (n *recordingNotifier) GameFinished(winner game.Team) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finished = append(n.finished, winner)
}

func origin() geo.Location {
	return geo.Location{Latitude: 37.5665, Longitude: 126.9780}
}

func northOf(meters float64) geo.Location {
	l := origin()
	l.Latitude += meters / 111195.0
	return l
}

type fixture struct {
	repo     *statestore.MemoryRepository
	bus      *syncBus
	realtime *statestore.Realtime
	notifier *recordingNotifier
}

// newFixture shares one bus and one repository across sessions, the
// way devices share the broker and the store. Each session gets its
// own realtime replica; f.realtime stands in for a peer's device.
func newFixture() *fixture {
	bus := newSyncBus()
	return &fixture{
		repo:     statestore.NewMemoryRepository(),
		bus:      bus,
		realtime: statestore.NewRealtime(bus),
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) session(userID, name string, opts ...SessionOpt) *Session {
	opts = append([]SessionOpt{
		WithNotifier(f.notifier),
		WithInviteBase("https://pnt.example.com"),
	}, opts...)
	return NewSession(userID, name, f.repo, statestore.NewRealtime(f.bus), &stubSource{loc: origin()}, opts...)
}

func TestCreateRoomAndInvite(t *testing.T) {
	f := newFixture()
	s := f.session("host", "Host")

	room, err := s.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "code length", len(room.Code), 6)
	testutil.AssertEqual(t, "status", room.Status, game.StatusWaiting)
	testutil.AssertEqual(t, "players", room.PlayerCount(), 1)

	found, err := f.repo.FindByCode(room.Code, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "persisted id", found.ID, room.ID)

	link, err := s.InviteLink()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "invite link", link, "https://pnt.example.com/join/"+room.Code)
}

func TestJoinAndLeaveRoom(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")
	guest := f.session("guest", "Guest")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined, err := guest.JoinRoom(context.Background(), room.Code, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "players after join", joined.PlayerCount(), 2)

	if err := guest.LeaveRoom(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if guest.Room() != nil {
		t.Error("expected guest to detach from the room")
	}

	found, err := f.repo.FindByCode(room.Code, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "players after leave", found.PlayerCount(), 1)
}

func TestLastPlayerOutDeletesRoom(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := host.LeaveRoom(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.repo.FindByCode(room.Code, time.Now())
	testutil.AssertEqual(t, "room gone", err, statestore.ErrRoomNotFound, cmpopts.EquateErrors())
}

func TestJoinRoomWrongPassword(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")
	guest := f.session("guest", "Guest")

	room, err := host.CreateRoom(context.Background(), "secret", "hunter2", game.VisibilityPrivate, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = guest.JoinRoom(context.Background(), room.Code, "wrong")
	testutil.AssertEqual(t, "wrong password", err, game.ErrWrongPassword, cmpopts.EquateErrors())
}

func TestLobbyConvergesAcrossDevices(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")
	guest := f.session("guest", "Guest")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "host alone", host.Room().PlayerCount(), 1)

	// The guest's join lands in the store and the host's replica, even
	// though the two sessions share no room pointer.
	if _, err := guest.JoinRoom(context.Background(), room.Code, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "host sees join", host.Room().PlayerCount(), 2)
	if host.Room() == guest.Room() {
		t.Fatal("expected each device to hold its own replica")
	}

	if err := guest.LeaveRoom(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "host sees leave", host.Room().PlayerCount(), 1)
}

func TestStartGamePicksUpRemoteJoins(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A join written straight to the store, with the notification lost.
	doc, err := f.repo.FindByCode(room.Code, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := doc.AddPlayer("guest", "Guest", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.repo.Save(doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "host replica stale", host.Room().PlayerCount(), 1)

	// Starting counts heads from the document, not the stale replica.
	if err := host.StartGame(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "status", host.Room().Status, game.StatusHiding)
	testutil.AssertEqual(t, "players", host.Room().PlayerCount(), 2)
}

func TestSetJailPropagates(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")
	guest := f.session("guest", "Guest")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := guest.JoinRoom(context.Background(), room.Code, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := host.StartGame(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jail := northOf(50)
	if err := host.SetJail(jail); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := guest.Room().Settings.JailLocation
	if got == nil {
		t.Fatal("expected the jail to reach the guest replica")
	}
	testutil.AssertEqual(t, "jail", *got, jail)
}

func TestStartGame(t *testing.T) {
	f := newFixture()
	host := f.session("host", "Host")
	guest := f.session("guest", "Guest")

	room, err := host.CreateRoom(context.Background(), "friday night", "", game.VisibilityPublic, game.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := guest.JoinRoom(context.Background(), room.Code, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "guest start", guest.StartGame(context.Background()), ErrNotHost, cmpopts.EquateErrors())

	if err := host.StartGame(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started := host.Room()
	testutil.AssertEqual(t, "status", started.Status, game.StatusHiding)
	if started.CenterLocation == nil {
		t.Fatal("expected a geofence center")
	}
	testutil.AssertEqual(t, "center", *started.CenterLocation, origin())
	for id, p := range started.Players {
		if p.Team != game.TeamPolice && p.Team != game.TeamThief {
			t.Errorf("player %s has no team", id)
		}
		testutil.AssertEqual(t, id+" alive", p.Status, game.PlayerAlive)
	}
}
