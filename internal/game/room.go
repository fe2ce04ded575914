package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// RoomTTL is how long a room lives from creation before it expires and
// disappears from discovery and lookup.
const RoomTTL = 2 * time.Hour

// Room is the single source of truth for one game session. Players are
// owned by the room and never exist independently. CenterLocation is
// set exactly when the room leaves waiting; Winner exactly when it
// finishes.
type Room struct {
	ID           string             `json:"id"`
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	HostID       string             `json:"host_id"`
	PasswordHash string             `json:"password_hash,omitempty"`
	Visibility   Visibility         `json:"visibility"`
	Status       GameStatus         `json:"status"`
	Settings     GameSettings       `json:"settings"`
	Players      map[string]*Player `json:"players"`

	// Location is where the room was created, used for discovery.
	// CenterLocation is where the game started, used as the geofence
	// origin. The two are distinct on purpose.
	Location       geo.Location  `json:"location"`
	CenterLocation *geo.Location `json:"center_location,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Winner     Team       `json:"winner,omitempty"`
}

// NewRoom creates a waiting room with the host as its only player.
// The password, when given, is stored as a bcrypt hash.
func NewRoom(code, name, hostID, hostName, password string, visibility Visibility, settings GameSettings, location geo.Location, now time.Time) (*Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	r := &Room{
		ID:         uuid.NewString(),
		Code:       code,
		Name:       name,
		HostID:     hostID,
		Visibility: visibility,
		Status:     StatusWaiting,
		Settings:   settings,
		Players: map[string]*Player{
			hostID: NewPlayer(hostID, hostName, true, now),
		},
		Location:  location,
		CreatedAt: now,
		ExpiresAt: now.Add(RoomTTL),
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		r.PasswordHash = string(hash)
	}

	return r, nil
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.ID == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if r.Code == "" {
		el.Add(fmt.Errorf("code is required"))
	}
	if r.HostID == "" {
		el.Add(fmt.Errorf("host_id is required"))
	}

	switch r.Status {
	case StatusWaiting, StatusHiding, StatusPlaying, StatusFinished:
	default:
		el.Add(fmt.Errorf("invalid status: %s", r.Status))
	}

	if r.Status != StatusWaiting && r.CenterLocation == nil {
		el.Add(fmt.Errorf("center_location must be set once the game has started"))
	}
	if r.Status == StatusFinished && r.Winner == "" {
		el.Add(fmt.Errorf("winner must be set on a finished room"))
	}

	el.Add(r.Settings.Validate())

	return el.Err()
}

// CheckPassword verifies a join attempt against the room password.
// Rooms without a password accept anything.
func (r *Room) CheckPassword(password string) bool {
	if r.PasswordHash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil
}

// AddPlayer joins a new participant. Joining an already-joined player
// is a no-op so rejoining after a dropped connection works.
func (r *Room) AddPlayer(id, name, password string, now time.Time) error {
	if _, ok := r.Players[id]; ok {
		return nil
	}
	if r.Status != StatusWaiting {
		return ErrRoomNotWaiting
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return ErrRoomFull
	}
	if !r.CheckPassword(password) {
		return ErrWrongPassword
	}

	r.Players[id] = NewPlayer(id, name, false, now)
	return nil
}

// RemovePlayer removes a participant. If the host leaves, another
// player inherits the host role.
func (r *Room) RemovePlayer(id string) error {
	if _, ok := r.Players[id]; !ok {
		return ErrPlayerNotFound
	}
	delete(r.Players, id)

	if id == r.HostID {
		for nextID, p := range r.Players {
			r.HostID = nextID
			p.IsHost = true
			break
		}
	}
	return nil
}

// Clone returns a deep copy. Repositories hand out clones so two
// sessions never share a mutable document; convergence happens through
// the store, not through pointer aliasing.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		c.Players[id] = p.clone()
	}
	c.CenterLocation = copyLocation(r.CenterLocation)
	c.Settings.JailLocation = copyLocation(r.Settings.JailLocation)
	c.StartedAt = copyTimestamp(r.StartedAt)
	c.FinishedAt = copyTimestamp(r.FinishedAt)
	return &c
}

func copyLocation(l *geo.Location) *geo.Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func copyTimestamp(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Player returns a room member, or nil when absent.
func (r *Room) Player(id string) *Player {
	return r.Players[id]
}

// PlayerCount returns the number of joined participants.
func (r *Room) PlayerCount() int {
	return len(r.Players)
}

// Expired reports whether the room has passed its time-to-live.
func (r *Room) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// SetJailLocation updates the jail point. Allowed while waiting or
// during setup only; the jail is fixed once pursuit starts.
func (r *Room) SetJailLocation(loc geo.Location) error {
	if r.Status == StatusPlaying || r.Status == StatusFinished {
		return ErrBadTransition
	}
	r.Settings.JailLocation = &loc
	return nil
}

// AliveThieves returns the thieves still in play.
func (r *Room) AliveThieves() []*Player {
	var alive []*Player
	for _, p := range r.Players {
		if p.Team == TeamThief && p.Status == PlayerAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// CaughtThieves returns the thieves currently held in jail.
func (r *Room) CaughtThieves() []*Player {
	var caught []*Player
	for _, p := range r.Players {
		if p.Team == TeamThief && p.Status == PlayerCaught {
			caught = append(caught, p)
		}
	}
	return caught
}
