package statestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/messaging"
)

// Bus is the pub/sub transport the realtime channel rides on,
// implemented by messaging.NatsServer.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
	SubscribeWithSubject(subject string, handler func(subject string, data []byte)) (func(), error)
}

// Realtime is the high-frequency channel of the shared state store:
// per-player location and status keys, last-writer-wins per key in bus
// delivery order. Each joined game keeps a local replica of the latest
// value per key; new subscribers get that snapshot first, then
// incremental updates. There is no ordering guarantee across keys.
type Realtime struct {
	bus Bus

	mu    sync.RWMutex
	games map[string]*gameReplica
}

type gameReplica struct {
	unsubs []func()

	locations  map[string]geo.Location
	statuses   map[string]game.PlayerStatus
	lastSeen   map[string]time.Time
	roomStatus game.GameStatus

	nextListener    int
	locListeners    map[int]func(playerID string, loc geo.Location)
	statusListeners map[int]func(playerID string, status game.PlayerStatus)
	roomListeners   map[int]func(status game.GameStatus)
}

func NewRealtime(bus Bus) *Realtime {
	return &Realtime{
		bus:   bus,
		games: make(map[string]*gameReplica),
	}
}

// Join starts replicating a game's realtime keys. Idempotent.
func (r *Realtime) Join(code string) error {
	code = strings.ToUpper(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[code]; ok {
		return nil
	}

	g := &gameReplica{
		locations:       make(map[string]geo.Location),
		statuses:        make(map[string]game.PlayerStatus),
		lastSeen:        make(map[string]time.Time),
		locListeners:    make(map[int]func(string, geo.Location)),
		statusListeners: make(map[int]func(string, game.PlayerStatus)),
		roomListeners:   make(map[int]func(game.GameStatus)),
	}

	unsubPlayers, err := r.bus.SubscribeWithSubject(messaging.AllPlayerSubjects(code), func(subject string, data []byte) {
		r.handlePlayerMessage(code, subject, data)
	})
	if err != nil {
		return fmt.Errorf("subscribing to player keys: %w", err)
	}
	g.unsubs = append(g.unsubs, unsubPlayers)

	unsubStatus, err := r.bus.Subscribe(messaging.RoomStatusSubject(code), func(data []byte) {
		r.handleRoomStatus(code, data)
	})
	if err != nil {
		unsubPlayers()
		return fmt.Errorf("subscribing to room status: %w", err)
	}
	g.unsubs = append(g.unsubs, unsubStatus)

	r.games[code] = g
	return nil
}

// Leave tears down the replica and every listener for a game.
func (r *Realtime) Leave(code string) {
	code = strings.ToUpper(code)

	r.mu.Lock()
	g, ok := r.games[code]
	delete(r.games, code)
	r.mu.Unlock()

	if !ok {
		return
	}
	for _, unsub := range g.unsubs {
		unsub()
	}
}

// PublishLocation writes one player's latest location key and
// refreshes its presence heartbeat. Only the owning client may write
// its own location; that is a convention of the callers, not enforced
// here.
func (r *Realtime) PublishLocation(code, playerID string, loc geo.Location) error {
	code = strings.ToUpper(code)

	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshalling location: %w", err)
	}
	if err := r.bus.Publish(messaging.PlayerLocationSubject(code, playerID), data); err != nil {
		return err
	}

	seen := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return r.bus.Publish(messaging.PlayerLastSeenSubject(code, playerID), []byte(seen))
}

// PublishStatus writes one player's status key.
func (r *Realtime) PublishStatus(code, playerID string, status game.PlayerStatus) error {
	return r.bus.Publish(messaging.PlayerStatusSubject(strings.ToUpper(code), playerID), []byte(status))
}

// PublishRoomStatus writes the room lifecycle key.
func (r *Realtime) PublishRoomStatus(code string, status game.GameStatus) error {
	return r.bus.Publish(messaging.RoomStatusSubject(strings.ToUpper(code)), []byte(status))
}

// SubscribeLocations delivers the current location snapshot, then
// every subsequent update. Returns an unsubscribe function.
func (r *Realtime) SubscribeLocations(code string, fn func(playerID string, loc geo.Location)) func() {
	code = strings.ToUpper(code)

	r.mu.Lock()
	g, ok := r.games[code]
	if !ok {
		r.mu.Unlock()
		return func() {}
	}

	snapshot := make(map[string]geo.Location, len(g.locations))
	for id, loc := range g.locations {
		snapshot[id] = loc
	}

	id := g.nextListener
	g.nextListener++
	g.locListeners[id] = fn
	r.mu.Unlock()

	for playerID, loc := range snapshot {
		fn(playerID, loc)
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if g, ok := r.games[code]; ok {
			delete(g.locListeners, id)
		}
	}
}

// SubscribeStatuses delivers the current status snapshot, then every
// subsequent update.
func (r *Realtime) SubscribeStatuses(code string, fn func(playerID string, status game.PlayerStatus)) func() {
	code = strings.ToUpper(code)

	r.mu.Lock()
	g, ok := r.games[code]
	if !ok {
		r.mu.Unlock()
		return func() {}
	}

	snapshot := make(map[string]game.PlayerStatus, len(g.statuses))
	for id, st := range g.statuses {
		snapshot[id] = st
	}

	id := g.nextListener
	g.nextListener++
	g.statusListeners[id] = fn
	r.mu.Unlock()

	for playerID, st := range snapshot {
		fn(playerID, st)
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if g, ok := r.games[code]; ok {
			delete(g.statusListeners, id)
		}
	}
}

// SubscribeRoomStatus delivers the current lifecycle status (when
// known), then every subsequent change.
func (r *Realtime) SubscribeRoomStatus(code string, fn func(status game.GameStatus)) func() {
	code = strings.ToUpper(code)

	r.mu.Lock()
	g, ok := r.games[code]
	if !ok {
		r.mu.Unlock()
		return func() {}
	}

	current := g.roomStatus
	id := g.nextListener
	g.nextListener++
	g.roomListeners[id] = fn
	r.mu.Unlock()

	if current != "" {
		fn(current)
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if g, ok := r.games[code]; ok {
			delete(g.roomListeners, id)
		}
	}
}

// Snapshot returns the replica's current view of player locations.
// Evaluators read this; missing players simply have no entry yet.
func (r *Realtime) Snapshot(code string) (map[string]geo.Location, map[string]game.PlayerStatus) {
	code = strings.ToUpper(code)

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[code]
	if !ok {
		return nil, nil
	}

	locs := make(map[string]geo.Location, len(g.locations))
	for id, loc := range g.locations {
		locs[id] = loc
	}
	statuses := make(map[string]game.PlayerStatus, len(g.statuses))
	for id, st := range g.statuses {
		statuses[id] = st
	}
	return locs, statuses
}

// LastSeen returns a player's most recent presence heartbeat and
// whether one has been observed at all.
func (r *Realtime) LastSeen(code, playerID string) (time.Time, bool) {
	code = strings.ToUpper(code)

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[code]
	if !ok {
		return time.Time{}, false
	}
	ts, ok := g.lastSeen[playerID]
	return ts, ok
}

func (r *Realtime) handlePlayerMessage(code, subject string, data []byte) {
	// games.<code>.players.<id>.<key>
	parts := strings.Split(subject, ".")
	if len(parts) != 5 {
		return
	}
	playerID, key := parts[3], parts[4]

	r.mu.Lock()
	g, ok := r.games[code]
	if !ok {
		r.mu.Unlock()
		return
	}

	var (
		locListeners    []func(string, geo.Location)
		statusListeners []func(string, game.PlayerStatus)
		loc             geo.Location
		status          game.PlayerStatus
	)

	switch key {
	case "location":
		if err := json.Unmarshal(data, &loc); err != nil {
			r.mu.Unlock()
			slog.Warn("dropping malformed location update", "subject", subject, "error", err)
			return
		}
		g.locations[playerID] = loc
		for _, fn := range g.locListeners {
			locListeners = append(locListeners, fn)
		}
	case "status":
		status = game.PlayerStatus(data)
		g.statuses[playerID] = status
		for _, fn := range g.statusListeners {
			statusListeners = append(statusListeners, fn)
		}
	case "lastseen":
		if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			g.lastSeen[playerID] = time.UnixMilli(ms)
		}
	}
	r.mu.Unlock()

	for _, fn := range locListeners {
		fn(playerID, loc)
	}
	for _, fn := range statusListeners {
		fn(playerID, status)
	}
}

func (r *Realtime) handleRoomStatus(code string, data []byte) {
	status := game.GameStatus(data)

	r.mu.Lock()
	g, ok := r.games[code]
	if !ok {
		r.mu.Unlock()
		return
	}
	g.roomStatus = status
	listeners := make([]func(game.GameStatus), 0, len(g.roomListeners))
	for _, fn := range g.roomListeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}
