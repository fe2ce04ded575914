package game

import (
	"time"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// Player is one participant in a room. Catches is set only for police,
// Rescues only for thieves; both are nil before team assignment.
type Player struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Team     Team          `json:"team,omitempty"`
	Status   PlayerStatus  `json:"status"`
	Location *geo.Location `json:"location,omitempty"`
	IsHost   bool          `json:"is_host"`
	JoinedAt time.Time     `json:"joined_at"`
	Catches  *int          `json:"catches,omitempty"`
	Rescues  *int          `json:"rescues,omitempty"`
}

// NewPlayer creates a fresh participant with no team and status alive.
func NewPlayer(id, name string, isHost bool, now time.Time) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Status:   PlayerAlive,
		IsHost:   isHost,
		JoinedAt: now,
	}
}

func (p *Player) clone() *Player {
	c := *p
	c.Location = copyLocation(p.Location)
	if p.Catches != nil {
		n := *p.Catches
		c.Catches = &n
	}
	if p.Rescues != nil {
		n := *p.Rescues
		c.Rescues = &n
	}
	return &c
}

// AddCatch increments the police catch counter.
func (p *Player) AddCatch() {
	if p.Catches != nil {
		*p.Catches++
	}
}

// AddRescue increments the thief rescue counter.
func (p *Player) AddRescue() {
	if p.Rescues != nil {
		*p.Rescues++
	}
}

// CatchCount returns the catch counter, zero when unset.
func (p *Player) CatchCount() int {
	if p.Catches == nil {
		return 0
	}
	return *p.Catches
}

// RescueCount returns the rescue counter, zero when unset.
func (p *Player) RescueCount() int {
	if p.Rescues == nil {
		return 0
	}
	return *p.Rescues
}
