package statestore

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/messaging"
)

// DisconnectTimeout is how long a player may go without a presence
// heartbeat before the store marks them disconnected.
const DisconnectTimeout = 30 * time.Second

// PresenceMonitor is the store-side on-disconnect commitment, run by
// the rendezvous node. It watches heartbeat traffic across every game
// and publishes a disconnected status for any player whose heartbeat
// goes stale, independent of any further client activity. Clients arm
// it implicitly with their first location publication; no registration
// call is needed, so a client that dies right after joining is still
// covered.
//
// A player who leaves gracefully simply stops heartbeating and gets a
// trailing disconnected write on their status key. Replicas drop
// writes for players no longer in the room, so the write is inert.
type PresenceMonitor struct {
	bus Bus
	now func() time.Time

	mu       sync.Mutex
	watching bool
	lastSeen map[presenceKey]time.Time
}

type presenceKey struct {
	code     string
	playerID string
}

func NewPresenceMonitor(bus Bus) *PresenceMonitor {
	return &PresenceMonitor{
		bus:      bus,
		now:      time.Now,
		lastSeen: make(map[presenceKey]time.Time),
	}
}

// Tick arms the heartbeat watch if needed, then publishes a
// disconnected status for every player whose heartbeat is older than
// the timeout. A marked player who heartbeats again is re-armed by the
// watch, so reconnects keep working.
func (m *PresenceMonitor) Tick(ctx context.Context) error {
	if err := m.watch(); err != nil {
		// The broker may not be accepting subscriptions yet.
		slog.WarnContext(ctx, "presence watch not armed", "error", err)
		return nil
	}

	now := m.now()

	type staleEntry struct {
		key  presenceKey
		seen time.Time
	}
	m.mu.Lock()
	var stale []staleEntry
	for key, seen := range m.lastSeen {
		if now.Sub(seen) >= DisconnectTimeout {
			stale = append(stale, staleEntry{key: key, seen: seen})
		}
	}
	m.mu.Unlock()

	for _, e := range stale {
		subject := messaging.PlayerStatusSubject(e.key.code, e.key.playerID)
		if err := m.bus.Publish(subject, []byte(game.PlayerDisconnected)); err != nil {
			slog.WarnContext(ctx, "marking stale player disconnected", "player", e.key.playerID, "error", err)
			continue
		}

		m.mu.Lock()
		// Keep the entry if a heartbeat raced the publication.
		if m.lastSeen[e.key].Equal(e.seen) {
			delete(m.lastSeen, e.key)
		}
		m.mu.Unlock()
	}

	return nil
}

func (m *PresenceMonitor) watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	if _, err := m.bus.SubscribeWithSubject(messaging.AllGameSubjects(), m.observe); err != nil {
		return err
	}
	m.watching = true
	return nil
}

// observe (re)arms the watchdog from a heartbeat. Arrival time is used
// rather than the client's own clock.
func (m *PresenceMonitor) observe(subject string, _ []byte) {
	// games.<code>.players.<id>.lastseen
	parts := strings.Split(subject, ".")
	if len(parts) != 5 || parts[4] != "lastseen" {
		return
	}
	key := presenceKey{code: parts[1], playerID: parts[3]}

	m.mu.Lock()
	m.lastSeen[key] = m.now()
	m.mu.Unlock()
}

// Connected reports whether a peer has published a heartbeat within
// the timeout. Peers with no heartbeat at all are not connected.
func Connected(realtime *Realtime, code, playerID string, now time.Time) bool {
	seen, ok := realtime.LastSeen(code, playerID)
	if !ok {
		return false
	}
	return now.Sub(seen) < DisconnectTimeout
}
