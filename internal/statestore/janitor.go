package statestore

import (
	"context"
	"log/slog"
	"time"

	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/storage"
)

// Janitor sweeps expired rooms out of the durable store so stale codes
// free up for reuse. Lookups already hide expired rooms; the janitor
// just reclaims the space.
type Janitor struct {
	store storage.Storer[*game.Room]
	now   func() time.Time
}

func NewJanitor(store storage.Storer[*game.Room]) *Janitor {
	return &Janitor{
		store: store,
		now:   time.Now,
	}
}

func (j *Janitor) Tick(ctx context.Context) error {
	now := j.now()
	for id, room := range j.store.GetAll() {
		if !room.Expired(now) {
			continue
		}
		if err := j.store.Delete(id); err != nil {
			slog.WarnContext(ctx, "deleting expired room failed", "code", room.Code, "error", err)
			continue
		}
		slog.InfoContext(ctx, "removed expired room", "code", room.Code)
	}
	return nil
}
