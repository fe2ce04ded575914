package statestore

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/storage"
)

var ErrRoomNotFound = errors.New("room not found")

// NearbyRoom is a discovery search hit.
type NearbyRoom struct {
	Room     *game.Room
	Distance float64
}

// RoomRepository is the low-frequency document channel of the shared
// state store: whole-room reads and last-writer-wins whole-room
// writes. Expired rooms are invisible to lookup and search.
type RoomRepository interface {
	Save(room *game.Room) error
	FindByCode(code string, now time.Time) (*game.Room, error)
	FindNearby(origin geo.Location, radiusMeters float64, now time.Time) ([]NearbyRoom, error)
	Delete(code string) error
}

// FileRepository is the durable repository, backed by the generic
// json file store. Reads and writes go through Room.Clone so the
// store's cache never aliases a caller's document.
type FileRepository struct {
	store storage.Storer[*game.Room]
}

func NewFileRepository(store storage.Storer[*game.Room]) *FileRepository {
	return &FileRepository{store: store}
}

func (r *FileRepository) Save(room *game.Room) error {
	return r.store.Save(strings.ToUpper(room.Code), room.Clone())
}

func (r *FileRepository) FindByCode(code string, now time.Time) (*game.Room, error) {
	room := r.store.Get(strings.ToUpper(code))
	if room == nil || room.Expired(now) {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (r *FileRepository) FindNearby(origin geo.Location, radiusMeters float64, now time.Time) ([]NearbyRoom, error) {
	hits := filterNearby(r.store.GetAll(), origin, radiusMeters, now)
	for i := range hits {
		hits[i].Room = hits[i].Room.Clone()
	}
	return hits, nil
}

func (r *FileRepository) Delete(code string) error {
	return r.store.Delete(strings.ToUpper(code))
}

// MemoryRepository is the local-only fallback used when the durable
// backend is unreachable. Same semantics, no persistence. Like the
// file-backed side it hands out copies, never a shared document.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]*game.Room)}
}

func (r *MemoryRepository) Save(room *game.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[strings.ToUpper(room.Code)] = room.Clone()
	return nil
}

func (r *MemoryRepository) FindByCode(code string, now time.Time) (*game.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[strings.ToUpper(code)]
	if !ok || room.Expired(now) {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (r *MemoryRepository) FindNearby(origin geo.Location, radiusMeters float64, now time.Time) ([]NearbyRoom, error) {
	r.mu.RLock()
	hits := filterNearby(r.rooms, origin, radiusMeters, now)
	r.mu.RUnlock()

	for i := range hits {
		hits[i].Room = hits[i].Room.Clone()
	}
	return hits, nil
}

func (r *MemoryRepository) Delete(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, strings.ToUpper(code))
	return nil
}

func filterNearby(rooms map[string]*game.Room, origin geo.Location, radiusMeters float64, now time.Time) []NearbyRoom {
	var hits []NearbyRoom
	for _, room := range rooms {
		if room.Status != game.StatusWaiting || room.Visibility != game.VisibilityPublic {
			continue
		}
		if room.Expired(now) {
			continue
		}
		d := geo.Distance(origin, room.Location)
		if d <= radiusMeters {
			hits = append(hits, NearbyRoom{Room: room, Distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
