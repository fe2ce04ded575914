package statestore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
)

// FallbackRepository composes a durable repository with a local-only
// one. Writes go to both; when the durable side fails the write still
// succeeds locally and the degradation is logged, not surfaced. Reads
// prefer the durable side and fall back on error. Callers cannot tell
// which backend served them.
//
// Every successful save is also fanned out to process-local observers
// so multiple sessions in one process stay consistent even while the
// durable backend is down.
type FallbackRepository struct {
	durable RoomRepository
	local   RoomRepository

	mu        sync.Mutex
	observers map[int]func(*game.Room)
	nextObs   int
}

func NewFallbackRepository(durable, local RoomRepository) *FallbackRepository {
	return &FallbackRepository{
		durable:   durable,
		local:     local,
		observers: make(map[int]func(*game.Room)),
	}
}

func (r *FallbackRepository) Save(room *game.Room) error {
	if err := r.durable.Save(room); err != nil {
		slog.Warn("durable room save failed, keeping local copy", "code", room.Code, "error", err)
	}
	if err := r.local.Save(room); err != nil {
		return err
	}
	r.notify(room)
	return nil
}

func (r *FallbackRepository) FindByCode(code string, now time.Time) (*game.Room, error) {
	room, err := r.durable.FindByCode(code, now)
	if err == nil {
		// Keep the local replica warm for fallback reads.
		_ = r.local.Save(room)
		return room, nil
	}
	return r.local.FindByCode(code, now)
}

func (r *FallbackRepository) FindNearby(origin geo.Location, radiusMeters float64, now time.Time) ([]NearbyRoom, error) {
	hits, err := r.durable.FindNearby(origin, radiusMeters, now)
	if err == nil {
		return hits, nil
	}
	return r.local.FindNearby(origin, radiusMeters, now)
}

func (r *FallbackRepository) Delete(code string) error {
	if err := r.durable.Delete(code); err != nil {
		slog.Warn("durable room delete failed", "code", code, "error", err)
	}
	return r.local.Delete(code)
}

// Observe registers a callback invoked on every successful save in
// this process. Returns a cancel function.
func (r *FallbackRepository) Observe(fn func(*game.Room)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, id)
	}
}

func (r *FallbackRepository) notify(room *game.Room) {
	r.mu.Lock()
	fns := make([]func(*game.Room), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(room)
	}
}
