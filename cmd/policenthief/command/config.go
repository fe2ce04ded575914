package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Nats    NatsConfig    `json:"nats"`
	Storage StorageConfig `json:"storage"`
	Rooms   RoomsConfig   `json:"rooms"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Nats.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Rooms.Validate())

	return el.Err()
}

// RoomsConfig tunes the expired-room sweep.
type RoomsConfig struct {
	SweepInterval string `json:"sweep_interval"`
}

func (c *RoomsConfig) Validate() error {
	el := errors.NewErrorList()

	if c.SweepInterval != "" {
		d, err := time.ParseDuration(c.SweepInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing sweep_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("sweep_interval must be at least 1 second"))
		}
	}

	return el.Err()
}

func (c *RoomsConfig) sweepInterval() time.Duration {
	if c.SweepInterval == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return time.Minute
	}
	return d
}
