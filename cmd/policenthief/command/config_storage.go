package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/wpals0817-max/policenthief/internal/discovery"
	"github.com/wpals0817-max/policenthief/internal/game"
	"github.com/wpals0817-max/policenthief/internal/statestore"
	"github.com/wpals0817-max/policenthief/internal/storage"
)

type StorageConfig struct {
	Rooms   AssetConfig[*game.Room]            `json:"rooms"`
	History AssetConfig[*discovery.GameRecord] `json:"history"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.History.Validate("history"))
	return el.Err()
}

func (c *StorageConfig) BuildRoomStore() (*storage.FileStore[*game.Room], error) {
	return c.Rooms.BuildFileStore()
}

// BuildRoomRepository layers the durable room store with a local
// fallback so discovery keeps working through backend hiccups.
func (c *StorageConfig) BuildRoomRepository() (*statestore.FallbackRepository, error) {
	store, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	durable := statestore.NewFileRepository(store)
	return statestore.NewFallbackRepository(durable, statestore.NewMemoryRepository()), nil
}

func (c *StorageConfig) BuildRecorder() (*discovery.Recorder, error) {
	store, err := c.History.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}
	return discovery.NewRecorder(store), nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
