package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wpals0817-max/policenthief/internal/driver"
	"github.com/wpals0817-max/policenthief/internal/evaluator"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/location"
)

// Play runs the active game loop: location watch and publication, peer
// subscriptions and the rule evaluators on their tick cadences. It
// blocks until the game finishes or the context is cancelled, and
// tears everything down on every exit path.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	room := s.room
	var finished chan struct{}
	if room != nil {
		finished = s.finishedCh
	}
	s.mu.Unlock()

	if room == nil {
		return ErrNoRoom
	}
	code := room.Code

	// The rendezvous node's watchdog covers ungraceful drops on its
	// own; heartbeats ride every location publication.
	if err := s.realtime.Join(code); err != nil {
		return fmt.Errorf("joining realtime channel: %w", err)
	}

	unsubStatus := s.realtime.SubscribeStatuses(code, s.applyPeerStatus)
	unsubRoom := s.realtime.SubscribeRoomStatus(code, s.applyRoomStatus)
	defer func() {
		unsubRoom()
		unsubStatus()
		s.realtime.Leave(code)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := location.NewWatcher(s.source, s.realtime, s.tracker, code, s.userID, s.notifier.LocationError)
	watchDone := make(chan error, 1)
	go func() { watchDone <- watcher.Run(ctx) }()

	d := driver.NewGameDriver(
		[]driver.Manager{&boundaryManager{s: s}, &clockManager{s: s}},
		driver.WithTickLength(evaluator.BoundaryInterval),
		driver.WithSchedule(evaluator.ProximityInterval, &proximityManager{s: s}),
	)
	driveDone := make(chan error, 1)
	go func() { driveDone <- d.Start(ctx) }()

	var err error
	select {
	case <-ctx.Done():
	case <-finished:
	case err = <-driveDone:
	}

	cancel()
	if werr := <-watchDone; werr != nil {
		slog.Warn("location watch ended with error", "code", code, "error", werr)
	}
	select {
	case <-driveDone:
	default:
	}
	return err
}

// applyPeerStatus folds a peer's published status into the local room
// replica. Own writes echo back and are applied the same way.
func (s *Session) applyPeerStatus(playerID string, status game.PlayerStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return
	}
	p := s.room.Player(playerID)
	if p == nil {
		return
	}
	p.Status = status
}

// applyRoomStatus folds a room-level change published by another
// client. Pre-pursuit changes are whole-document: the replica refetches
// from the repository rather than patching itself, so joins, leaves and
// the jail drop converge the same way across devices. On finish the
// durable document carries the winner.
func (s *Session) applyRoomStatus(status game.GameStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room
	if room == nil {
		return
	}

	switch status {
	case game.StatusWaiting:
		// Lobby membership changed on another device.
		if room.Status != game.StatusWaiting {
			return
		}
		if doc, err := s.repo.FindByCode(room.Code, s.now()); err == nil && doc.Status == game.StatusWaiting {
			s.room = doc
		}
	case game.StatusHiding:
		switch room.Status {
		case game.StatusWaiting:
			// The host's start wrote teams and the geofence center to
			// the room document; pick up the fresh copy.
			if doc, err := s.repo.FindByCode(room.Code, s.now()); err == nil && doc.Status == game.StatusHiding {
				s.room = doc
			} else {
				room.Status = game.StatusHiding
			}
			s.notifier.GameStatusChanged(game.StatusHiding)
		case game.StatusHiding:
			// A document change during the phase, the jail drop.
			if doc, err := s.repo.FindByCode(room.Code, s.now()); err == nil && doc.Status == game.StatusHiding {
				s.room = doc
			}
		}
	case game.StatusPlaying:
		if room.Status == game.StatusHiding {
			room.Status = game.StatusPlaying
			s.notifier.GameStatusChanged(game.StatusPlaying)
		}
	case game.StatusFinished:
		if room.Status == game.StatusFinished {
			return
		}
		if doc, err := s.repo.FindByCode(room.Code, s.now()); err == nil && doc.Status == game.StatusFinished {
			room.Winner = doc.Winner
			room.FinishedAt = doc.FinishedAt
		}
		room.Status = game.StatusFinished
		s.finishLocked(room.Winner)
	}
}
