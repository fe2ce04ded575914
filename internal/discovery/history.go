package discovery

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/geo"
	"github.com/wpals0817-max/policenthief/internal/storage"
)

type GameResult string

const (
	ResultWin  GameResult = "win"
	ResultLoss GameResult = "loss"
)

// GameRecord is one finished game in a player's history. Records are
// append-only and written at result time, never during play.
type GameRecord struct {
	ID       string         `json:"id"`
	PlayerID string         `json:"player_id"`
	Date     time.Time      `json:"date"`
	RoomName string         `json:"room_name"`
	Team     game.Team      `json:"team"`
	Result   GameResult     `json:"result"`
	Duration time.Duration  `json:"duration"`
	Distance float64        `json:"distance"`
	Catches  int            `json:"catches"`
	Rescues  int            `json:"rescues"`
	Route    []geo.Location `json:"route,omitempty"`
}

func (r *GameRecord) Validate() error {
	el := errors.NewErrorList()
	if r.PlayerID == "" {
		el.Add(fmt.Errorf("player_id is required"))
	}
	if r.RoomName == "" {
		el.Add(fmt.Errorf("room_name is required"))
	}
	if r.Date.IsZero() {
		el.Add(fmt.Errorf("date is required"))
	}
	if r.Result != ResultWin && r.Result != ResultLoss {
		el.Add(fmt.Errorf("result must be %q or %q", ResultWin, ResultLoss))
	}
	if r.Duration < 0 {
		el.Add(fmt.Errorf("duration must not be negative"))
	}
	if r.Distance < 0 {
		el.Add(fmt.Errorf("distance must not be negative"))
	}
	return el.Err()
}

// Recorder keeps per-player game histories on a generic asset store.
type Recorder struct {
	store storage.Storer[*GameRecord]
}

func NewRecorder(store storage.Storer[*GameRecord]) *Recorder {
	return &Recorder{store: store}
}

// Append persists a record, assigning an id when absent.
func (r *Recorder) Append(rec *GameRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := r.store.Save(rec.ID, rec); err != nil {
		return fmt.Errorf("saving game record: %w", err)
	}
	return nil
}

// ForPlayer returns a player's history, most recent first.
func (r *Recorder) ForPlayer(playerID string) []*GameRecord {
	var records []*GameRecord
	for _, rec := range r.store.GetAll() {
		if rec.PlayerID == playerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records
}
