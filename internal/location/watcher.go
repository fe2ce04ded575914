package location

import (
	"context"
	"log/slog"
	"time"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// PublishInterval throttles publication to at most one update per
// player per interval, bounding write amplification on the shared
// state store however fast the device produces samples.
const PublishInterval = 3 * time.Second

// Publisher receives the throttled sample stream. Implemented by
// statestore.Realtime.
type Publisher interface {
	PublishLocation(code, playerID string, loc geo.Location) error
}

// Watcher pumps a position source into the tracker (every sample) and
// the publisher (throttled). Source errors are handed to onError for
// the player-visible retry state; publish failures are logged and
// superseded by the next attempt.
type Watcher struct {
	source    Source
	publisher Publisher
	tracker   *Tracker
	onError   func(error)

	code     string
	playerID string

	interval time.Duration
	now      func() time.Time
}

func NewWatcher(src Source, pub Publisher, tracker *Tracker, code, playerID string, onError func(error)) *Watcher {
	return &Watcher{
		source:    src,
		publisher: pub,
		tracker:   tracker,
		onError:   onError,
		code:      code,
		playerID:  playerID,
		interval:  PublishInterval,
		now:       time.Now,
	}
}

// Run consumes the watch stream until ctx is canceled or the source
// closes. The tracker is reset on entry: a run is one session.
func (w *Watcher) Run(ctx context.Context) error {
	samples, errs, err := w.source.Watch(ctx)
	if err != nil {
		return err
	}

	w.tracker.Reset()
	var lastPublish time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case srcErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if w.onError != nil {
				w.onError(srcErr)
			}
		case loc, ok := <-samples:
			if !ok {
				return nil
			}

			// History is never throttled.
			w.tracker.Record(loc)

			now := w.now()
			if now.Sub(lastPublish) < w.interval {
				continue
			}
			lastPublish = now

			if err := w.publisher.PublishLocation(w.code, w.playerID, loc); err != nil {
				// Stale locations are an accepted degradation; the
				// next throttled publication supersedes this one.
				slog.WarnContext(ctx, "location publish failed", "player", w.playerID, "error", err)
			}
		}
	}
}
