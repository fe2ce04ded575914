package driver

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultTickLength = time.Second
)

// Manager is a unit of periodic work driven by the game loop.
type Manager interface {
	Tick(context.Context) error
}

type schedule struct {
	interval time.Duration
	managers []Manager
}

// GameDriver runs sets of managers on fixed cadences. Managers passed
// to the constructor run at the default tick length; additional
// schedules can run faster or slower.
type GameDriver struct {
	tickLength time.Duration
	managers   []Manager
	extra      []schedule
}

func NewGameDriver(managers []Manager, opts ...GameDriverOpt) *GameDriver {
	d := &GameDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start blocks until the context is cancelled or a manager returns an
// error. Each schedule keeps its own ticker; an error on any of them
// stops all of them.
func (d *GameDriver) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedules := d.schedules()
	errc := make(chan error, len(schedules))
	var wg sync.WaitGroup
	for _, s := range schedules {
		wg.Add(1)
		go func(s schedule) {
			defer wg.Done()
			if err := d.run(ctx, s); err != nil {
				errc <- err
				cancel()
			}
		}(s)
	}
	wg.Wait()
	close(errc)
	return <-errc
}

// Tick runs every manager across all schedules once.
func (d *GameDriver) Tick(ctx context.Context) error {
	for _, s := range d.schedules() {
		for _, m := range s.managers {
			if err := m.Tick(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *GameDriver) schedules() []schedule {
	all := make([]schedule, 0, len(d.extra)+1)
	if len(d.managers) > 0 {
		all = append(all, schedule{interval: d.tickLength, managers: d.managers})
	}
	return append(all, d.extra...)
}

func (d *GameDriver) run(ctx context.Context, s schedule) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, m := range s.managers {
				if err := m.Tick(ctx); err != nil {
					return err
				}
			}
		}
	}
}
