package command

import (
	"fmt"
	"time"

	service "github.com/pixil98/go-service"
	"github.com/wpals0817-max/policenthief/internal/driver"
	"github.com/wpals0817-max/policenthief/internal/statestore"
)

// BuildWorkers assembles the rendezvous node: the embedded message
// broker game clients meet on, the presence watchdog marking silent
// players disconnected, and the sweep reclaiming expired rooms.
func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	roomStore, err := cfg.Storage.BuildRoomStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}

	presence := statestore.NewPresenceMonitor(natsServer)
	janitor := statestore.NewJanitor(roomStore)

	gameDriver := driver.NewGameDriver(
		[]driver.Manager{presence},
		driver.WithTickLength(time.Second),
		driver.WithSchedule(cfg.Rooms.sweepInterval(), janitor),
	)

	return service.WorkerList{
		"nats":   natsServer,
		"driver": gameDriver,
	}, nil
}
