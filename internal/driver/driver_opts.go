package driver

import "time"

type GameDriverOpt func(*GameDriver)

func WithTickLength(tickLength time.Duration) GameDriverOpt {
	return func(d *GameDriver) {
		d.tickLength = tickLength
	}
}

// WithSchedule adds a set of managers running at their own interval,
// independent of the default tick length.
func WithSchedule(interval time.Duration, managers ...Manager) GameDriverOpt {
	return func(d *GameDriver) {
		d.extra = append(d.extra, schedule{interval: interval, managers: managers})
	}
}
