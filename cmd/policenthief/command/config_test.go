package command

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestStorageConfigValidate(t *testing.T) {
	tmp := t.TempDir()

	valid := StorageConfig{}
	valid.Rooms.Path = tmp
	valid.History.Path = tmp
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := StorageConfig{}
	missing.History.Path = tmp
	testutil.AssertErrorContains(t, missing.Validate(), "rooms: path is required")

	bad := StorageConfig{}
	bad.Rooms.Path = tmp
	bad.History.Path = tmp + "/does-not-exist"
	testutil.AssertErrorContains(t, bad.Validate(), "history: invalid path")
}

func TestRoomsConfigValidate(t *testing.T) {
	tests := map[string]struct {
		interval string
		expErr   string
	}{
		"empty uses default": {interval: ""},
		"valid":              {interval: "30s"},
		"unparseable":        {interval: "bogus", expErr: "parsing sweep_interval"},
		"too short":          {interval: "100ms", expErr: "at least 1 second"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := RoomsConfig{SweepInterval: tt.interval}
			err := cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestBuildWorkers(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Rooms.Path = t.TempDir()
	cfg.Storage.History.Path = t.TempDir()

	workers, err := BuildWorkers(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"nats", "driver"} {
		if _, ok := workers[name]; !ok {
			t.Errorf("expected worker %q", name)
		}
	}
}

func TestBuildStores(t *testing.T) {
	cfg := StorageConfig{}
	cfg.Rooms.Path = t.TempDir()
	cfg.History.Path = t.TempDir()

	repo, err := cfg.BuildRoomRepository()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo == nil {
		t.Fatal("expected a repository")
	}

	rec, err := cfg.BuildRecorder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a recorder")
	}
}
