package session

import (
	"context"
	"log/slog"

	"github.com/wpals0817-max/policenthief/internal/evaluator"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/statestore"
)

// boundaryManager checks the local player against the geofence every
// second during the pursuit phase.
type boundaryManager struct {
	s *Session
}

func (m *boundaryManager) Tick(ctx context.Context) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room
	if room == nil || room.Status != game.StatusPlaying || room.CenterLocation == nil {
		return nil
	}
	self := room.Player(s.userID)
	if self == nil || self.Status != game.PlayerAlive {
		return nil
	}
	loc, ok := s.tracker.Latest()
	if !ok {
		return nil // no fix yet
	}

	res := s.boundary.Check(loc, *room.CenterLocation, room.Settings.BoundaryRadius, room.Settings.AutoEliminationDistance)
	switch res.Event {
	case evaluator.BoundaryWarning:
		s.notifier.BoundaryWarning(res.Remaining)
	case evaluator.BoundaryEliminated:
		self.Status = game.PlayerDisconnected
		if err := s.realtime.PublishStatus(room.Code, s.userID, game.PlayerDisconnected); err != nil {
			slog.Warn("publishing elimination failed", "code", room.Code, "error", err)
		}
		s.notifier.Eliminated()
	}
	return nil
}

// proximityManager runs the catch or rescue evaluation every two
// seconds, depending on the local player's team.
type proximityManager struct {
	s *Session
}

func (m *proximityManager) Tick(ctx context.Context) error {
	s := m.s
	s.mu.Lock()

	room := s.room
	if room == nil || room.Status != game.StatusPlaying {
		s.mu.Unlock()
		return nil
	}
	self := room.Player(s.userID)
	if self == nil || self.Status != game.PlayerAlive {
		s.mu.Unlock()
		return nil
	}
	loc, ok := s.tracker.Latest()
	if !ok {
		s.mu.Unlock()
		return nil
	}

	code := room.Code
	var swept bool
	switch self.Team {
	case game.TeamPolice:
		swept = m.checkCatches(room, loc)
	case game.TeamThief:
		m.checkRescue(room, loc)
	}
	s.mu.Unlock()

	if swept {
		s.announceRoomChange(code, game.StatusFinished)
	}
	return nil
}

func (m *proximityManager) checkCatches(room *game.Room, self geo.Location) bool {
	s := m.s
	now := s.now()

	locs, _ := s.realtime.Snapshot(room.Code)
	peerLocs := make(map[string]geo.Location, len(locs))
	for id, l := range locs {
		if id == s.userID {
			continue
		}
		// Peers silent past the presence timeout are treated as
		// having no data this round.
		if !statestore.Connected(s.realtime, room.Code, id, now) {
			continue
		}
		peerLocs[id] = l
	}

	caught := evaluator.Catches(room, s.userID, self, peerLocs)
	for _, p := range caught {
		if err := s.realtime.PublishStatus(room.Code, p.ID, game.PlayerCaught); err != nil {
			slog.Warn("publishing catch failed", "code", room.Code, "target", p.ID, "error", err)
		}
		s.notifier.Caught(p)
	}

	if len(caught) > 0 && game.CheckPoliceSweep(room, now) {
		s.finishRoomLocked(game.TeamPolice)
		return true
	}
	return false
}

func (m *proximityManager) checkRescue(room *game.Room, self geo.Location) {
	s := m.s

	out := evaluator.Rescue(room, s.userID, self)
	for _, p := range out.Rescued {
		if err := s.realtime.PublishStatus(room.Code, p.ID, game.PlayerAlive); err != nil {
			slog.Warn("publishing rescue failed", "code", room.Code, "target", p.ID, "error", err)
		}
	}
	if len(out.Rescued) > 0 {
		s.notifier.Rescued(out.Rescued)
	}

	// The call-out prompt opens once per visit to the jail.
	if len(out.Prompt) > 0 {
		if !s.promptOpen {
			s.promptOpen = true
			s.notifier.RescuePrompt(out.Prompt)
		}
	} else {
		s.promptOpen = false
	}
}

// clockManager drives the timer transitions: hiding to playing, and
// the end of the game on a police sweep or timer expiry. Every client
// advances independently against the same deadlines.
type clockManager struct {
	s *Session
}

func (m *clockManager) Tick(ctx context.Context) error {
	s := m.s
	s.mu.Lock()

	room := s.room
	if room == nil {
		s.mu.Unlock()
		return nil
	}
	now := s.now()
	code := room.Code

	var announce game.GameStatus
	switch room.Status {
	case game.StatusHiding:
		if game.AdvanceHiding(room, now) {
			s.notifier.GameStatusChanged(game.StatusPlaying)
			if room.HostID == s.userID {
				announce = game.StatusPlaying
			}
		}
	case game.StatusPlaying:
		if game.CheckPoliceSweep(room, now) {
			s.finishRoomLocked(game.TeamPolice)
			announce = game.StatusFinished
		} else if game.CheckTimeUp(room, now) {
			s.finishRoomLocked(room.Winner)
			announce = game.StatusFinished
		}
	}
	s.mu.Unlock()

	if announce != "" {
		s.announceRoomChange(code, announce)
	}
	return nil
}

// finishRoomLocked persists the result and fires the local finish
// path. Saving at result time is the one durable write during play.
// The caller announces the lifecycle change after releasing the
// session lock; the bus may deliver the echo synchronously into
// applyRoomStatus.
func (s *Session) finishRoomLocked(winner game.Team) {
	room := s.room
	if err := s.repo.Save(room); err != nil {
		slog.Warn("saving finished room failed", "code", room.Code, "error", err)
	}
	s.finishLocked(winner)
}
