// Package session ties one player's process together: room lifecycle,
// location publication, peer subscriptions and the per-tick rule
// evaluators. Every game client runs the same evaluators against its
// own replica of the shared state; there is no central arbiter, and
// conflicting writes within an evaluation window resolve last-write-
// wins.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/wpals0817-max/policenthief/internal/discovery"
	"github.com/wpals0817-max/policenthief/internal/evaluator"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/location"
	"github.com/wpals0817-max/policenthief/internal/statestore"
)

var (
	ErrNoRoom  = errors.New("not in a room")
	ErrNotHost = errors.New("host only action")
)

// Session is the explicit per-process context for one player. It is
// constructed once and threaded through; nothing here is global.
type Session struct {
	userID string
	name   string

	repo     statestore.RoomRepository
	realtime *statestore.Realtime
	source   location.Source
	notifier Notifier
	recorder *discovery.Recorder

	inviteBase string

	now func() time.Time
	rng *rand.Rand

	mu         sync.Mutex
	room       *game.Room
	unwatch    func()
	tracker    *location.Tracker
	boundary   *evaluator.BoundaryState
	promptOpen bool
	recorded   bool
	finishOnce *sync.Once
	finishedCh chan struct{}
}

func NewSession(userID, name string, repo statestore.RoomRepository, realtime *statestore.Realtime, source location.Source, opts ...SessionOpt) *Session {
	s := &Session{
		userID:   userID,
		name:     name,
		repo:     repo,
		realtime: realtime,
		source:   source,
		notifier: NopNotifier{},
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateRoom makes a new waiting room at the player's current position
// and enters it as host.
func (s *Session) CreateRoom(ctx context.Context, name, password string, visibility game.Visibility, settings game.GameSettings) (*game.Room, error) {
	loc, err := location.Current(ctx, s.source)
	if err != nil {
		return nil, fmt.Errorf("acquiring location: %w", err)
	}

	code, err := discovery.UniqueCode(s.repo, s.now())
	if err != nil {
		return nil, fmt.Errorf("generating room code: %w", err)
	}

	room, err := game.NewRoom(code, name, s.userID, s.name, password, visibility, settings, loc, s.now())
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	if err := s.repo.Save(room); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	if err := s.attach(room); err != nil {
		return nil, err
	}
	return room, nil
}

// JoinRoom enters an existing waiting room by code.
func (s *Session) JoinRoom(ctx context.Context, code, password string) (*game.Room, error) {
	room, err := s.repo.FindByCode(code, s.now())
	if err != nil {
		return nil, err
	}

	if err := room.AddPlayer(s.userID, s.name, password, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Save(room); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	if err := s.attach(room); err != nil {
		return nil, err
	}
	s.announceRoomChange(room.Code, game.StatusWaiting)
	return room, nil
}

// FindNearby lists joinable public rooms around the player.
func (s *Session) FindNearby(ctx context.Context, radiusMeters float64) ([]statestore.NearbyRoom, error) {
	loc, err := location.Current(ctx, s.source)
	if err != nil {
		return nil, fmt.Errorf("acquiring location: %w", err)
	}
	return s.repo.FindNearby(loc, radiusMeters, s.now())
}

// LeaveRoom removes the player from the current room. The last player
// out deletes the room; otherwise the remaining members are nudged to
// refetch the document.
func (s *Session) LeaveRoom() error {
	s.mu.Lock()

	if s.room == nil {
		s.mu.Unlock()
		return ErrNoRoom
	}

	code := s.room.Code
	if err := s.room.RemovePlayer(s.userID); err != nil {
		s.mu.Unlock()
		return err
	}

	var err error
	deleted := s.room.PlayerCount() == 0
	if deleted {
		err = s.repo.Delete(code)
	} else {
		err = s.repo.Save(s.room)
	}

	unwatch := s.unwatch
	s.unwatch = nil
	s.room = nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	s.realtime.Leave(code)
	if err == nil && !deleted {
		s.announceRoomChange(code, game.StatusWaiting)
	}
	return err
}

// StartGame begins the hiding phase. Host only; the host's current
// position becomes the geofence center.
func (s *Session) StartGame(ctx context.Context) error {
	loc, err := location.Current(ctx, s.source)
	if err != nil {
		return fmt.Errorf("acquiring location: %w", err)
	}

	code, err := s.startGame(loc)
	if err != nil {
		return err
	}

	s.announceRoomChange(code, game.StatusHiding)
	s.notifier.GameStatusChanged(game.StatusHiding)
	return nil
}

func (s *Session) startGame(loc geo.Location) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return "", ErrNoRoom
	}
	code := s.room.Code

	// Joins from other devices land in the store, not in this replica.
	// Count heads from the document, not from a possibly stale copy.
	if doc, err := s.repo.FindByCode(code, s.now()); err == nil && doc.Status == game.StatusWaiting {
		s.room = doc
	}

	if s.room.HostID != s.userID {
		return "", ErrNotHost
	}
	if err := game.Start(s.room, &loc, s.rng, s.now()); err != nil {
		return "", err
	}
	if err := s.repo.Save(s.room); err != nil {
		return "", fmt.Errorf("saving room: %w", err)
	}
	return code, nil
}

// SetJail places the jail for rescues. Host only, blocked once the
// pursuit phase starts.
func (s *Session) SetJail(loc geo.Location) error {
	s.mu.Lock()

	if s.room == nil {
		s.mu.Unlock()
		return ErrNoRoom
	}
	if s.room.HostID != s.userID {
		s.mu.Unlock()
		return ErrNotHost
	}
	if err := s.room.SetJailLocation(loc); err != nil {
		s.mu.Unlock()
		return err
	}

	code, status := s.room.Code, s.room.Status
	err := s.repo.Save(s.room)
	s.mu.Unlock()

	if err == nil {
		s.announceRoomChange(code, status)
	}
	return err
}

// announceRoomChange nudges every member's replica to refetch the room
// document. Called with the session lock released: the bus may deliver
// the echo synchronously into applyRoomStatus.
func (s *Session) announceRoomChange(code string, status game.GameStatus) {
	if err := s.realtime.PublishRoomStatus(code, status); err != nil {
		slog.Warn("publishing room status failed", "code", code, "error", err)
	}
}

// RescueOne frees a single caught teammate, the explicit pick behind
// the call-out rescue prompt.
func (s *Session) RescueOne(targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return ErrNoRoom
	}

	target, ok := evaluator.RescueOne(s.room, s.userID, targetID)
	if !ok {
		return fmt.Errorf("cannot rescue %s", targetID)
	}

	if err := s.realtime.PublishStatus(s.room.Code, target.ID, game.PlayerAlive); err != nil {
		slog.Warn("publishing rescue failed", "code", s.room.Code, "target", target.ID, "error", err)
	}
	s.notifier.Rescued([]*game.Player{target})
	return nil
}

// Room returns the current room replica, nil outside a room. During
// play it is mutated by the session's own tick loops.
func (s *Session) Room() *game.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// InviteLink is the shareable join URL for the current room.
func (s *Session) InviteLink() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return "", ErrNoRoom
	}
	return discovery.InviteLink(s.inviteBase, s.room.Code), nil
}

// InviteQR renders the join URL as a PNG.
func (s *Session) InviteQR(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return nil, ErrNoRoom
	}
	return discovery.InviteQR(s.inviteBase, s.room.Code, size)
}

// Summary reports the local player's result for a finished game.
type Summary struct {
	RoomName string
	Team     game.Team
	Result   discovery.GameResult
	Duration time.Duration
	Distance float64
	Catches  int
	Rescues  int
	Route    []geo.Location
}

// Summary is valid once the game has finished.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() (Summary, bool) {
	room := s.room
	if room == nil || room.Status != game.StatusFinished {
		return Summary{}, false
	}
	self := room.Player(s.userID)
	if self == nil {
		return Summary{}, false
	}

	result := discovery.ResultLoss
	if room.Winner == self.Team {
		result = discovery.ResultWin
	}

	var duration time.Duration
	if room.StartedAt != nil && room.FinishedAt != nil {
		duration = room.FinishedAt.Sub(*room.StartedAt)
	}

	return Summary{
		RoomName: room.Name,
		Team:     self.Team,
		Result:   result,
		Duration: duration,
		Distance: s.tracker.TotalDistance(),
		Catches:  self.CatchCount(),
		Rescues:  self.RescueCount(),
		Route:    s.tracker.Route(),
	}, true
}

// attach binds the session to a room: fresh per-game state, a live
// replica, and the room-document subscription that keeps the lobby
// view converged across devices.
func (s *Session) attach(room *game.Room) error {
	if err := s.realtime.Join(room.Code); err != nil {
		return fmt.Errorf("joining realtime channel: %w", err)
	}
	unwatch := s.realtime.SubscribeRoomStatus(room.Code, s.applyRoomStatus)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unwatch != nil {
		s.unwatch()
	}
	s.room = room
	s.unwatch = unwatch
	s.tracker = location.NewTracker()
	s.boundary = &evaluator.BoundaryState{}
	s.promptOpen = false
	s.recorded = false
	s.finishOnce = &sync.Once{}
	s.finishedCh = make(chan struct{})
	return nil
}

// finishLocked fires the finish notification and appends the game
// history record. Idempotent per attached room.
func (s *Session) finishLocked(winner game.Team) {
	s.finishOnce.Do(func() {
		close(s.finishedCh)
		s.notifier.GameFinished(winner)
		s.recordResultLocked()
	})
}

func (s *Session) recordResultLocked() {
	if s.recorder == nil || s.recorded {
		return
	}

	summary, ok := s.summaryLocked()
	if !ok {
		return
	}

	date := s.now()
	if s.room.FinishedAt != nil {
		date = *s.room.FinishedAt
	}

	rec := &discovery.GameRecord{
		PlayerID: s.userID,
		Date:     date,
		RoomName: summary.RoomName,
		Team:     summary.Team,
		Result:   summary.Result,
		Duration: summary.Duration,
		Distance: summary.Distance,
		Catches:  summary.Catches,
		Rescues:  summary.Rescues,
		Route:    summary.Route,
	}
	if err := s.recorder.Append(rec); err != nil {
		slog.Warn("appending game record failed", "player", s.userID, "error", err)
		return
	}
	s.recorded = true
}
