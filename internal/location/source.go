package location

import (
	"context"
	"errors"
	"time"

	"github.com/wpals0817-max/policenthief/internal/geo"
)

// CurrentTimeout bounds how long a one-shot position request may take
// before it fails with ErrTimeout.
const CurrentTimeout = 10 * time.Second

// Source is the position collaborator: a one-shot current position
// and a continuous subscription that yields positions until the
// context is canceled. Errors on the error channel are the typed
// failures in errors.go.
type Source interface {
	Current(ctx context.Context) (geo.Location, error)
	Watch(ctx context.Context) (<-chan geo.Location, <-chan error, error)
}

// Current fetches the device's position with the bounded wait applied.
func Current(ctx context.Context, src Source) (geo.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, CurrentTimeout)
	defer cancel()

	loc, err := src.Current(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return geo.Location{}, ErrTimeout
		}
		return geo.Location{}, err
	}
	return loc, nil
}
