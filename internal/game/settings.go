package game

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/wpals0817-max/policenthief/internal/geo"
)

// Host-configurable limits. PoliceCount is additionally clamped to
// floor(playerCount/2) at team assignment time.
const (
	MinPlayers = 4
	MaxPlayers = 30

	MinPoliceCount = 1
	MaxPoliceCount = 15

	MinHidingTime = 10 * time.Second
	MaxHidingTime = 120 * time.Second

	MinGameTime = 5 * time.Minute
	MaxGameTime = 60 * time.Minute

	MinBoundaryRadius = 100.0
	MaxBoundaryRadius = 1000.0
)

// GameSettings are chosen by the host at room creation and immutable
// during an active game, except JailLocation which the host may set
// until play starts.
type GameSettings struct {
	MaxPlayers              int           `json:"max_players"`
	PoliceCount             int           `json:"police_count"`
	HidingTime              time.Duration `json:"hiding_time"`
	GameTime                time.Duration `json:"game_time"`
	BoundaryRadius          float64       `json:"boundary_radius"`
	AutoEliminationDistance float64       `json:"auto_elimination_distance"`
	RescueEnabled           bool          `json:"rescue_enabled"`
	RescueMethod            RescueMethod  `json:"rescue_method"`
	JailLocation            *geo.Location `json:"jail_location,omitempty"`
}

// DefaultSettings sizes a game for a small gathering: a school yard or
// park sized boundary and a police ratio of roughly one in five.
func DefaultSettings() GameSettings {
	return GameSettings{
		MaxPlayers:              10,
		PoliceCount:             2,
		HidingTime:              60 * time.Second,
		GameTime:                15 * time.Minute,
		BoundaryRadius:          300,
		AutoEliminationDistance: 100,
		RescueEnabled:           true,
		RescueMethod:            RescueTouch,
	}
}

// Validate satisfies storage.ValidatingSpec.
func (s *GameSettings) Validate() error {
	el := errors.NewErrorList()

	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayers {
		el.Add(fmt.Errorf("max_players must be between %d and %d", MinPlayers, MaxPlayers))
	}

	maxPolice := min(MaxPoliceCount, s.MaxPlayers/3)
	if s.PoliceCount < MinPoliceCount || s.PoliceCount > maxPolice {
		el.Add(fmt.Errorf("police_count must be between %d and %d", MinPoliceCount, maxPolice))
	}

	if s.HidingTime < MinHidingTime || s.HidingTime > MaxHidingTime {
		el.Add(fmt.Errorf("hiding_time must be between %s and %s", MinHidingTime, MaxHidingTime))
	}

	if s.GameTime < MinGameTime || s.GameTime > MaxGameTime {
		el.Add(fmt.Errorf("game_time must be between %s and %s", MinGameTime, MaxGameTime))
	}

	if s.BoundaryRadius < MinBoundaryRadius || s.BoundaryRadius > MaxBoundaryRadius {
		el.Add(fmt.Errorf("boundary_radius must be between %.0fm and %.0fm", MinBoundaryRadius, MaxBoundaryRadius))
	}

	if s.AutoEliminationDistance < 0 {
		el.Add(fmt.Errorf("auto_elimination_distance must not be negative"))
	}

	switch s.RescueMethod {
	case RescueTouch, RescueCallout:
	default:
		el.Add(fmt.Errorf("rescue_method must be %s or %s", RescueTouch, RescueCallout))
	}

	if s.JailLocation != nil {
		el.Add(s.JailLocation.Validate())
	}

	return el.Err()
}
