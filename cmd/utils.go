package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/config"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/settings"
	"github.com/rubiojr/pocketdiary/pkg/storage"
	"github.com/urfave/cli/v3"
)

// diary bundles what most commands need: the loaded config, the open store,
// the settings backend chosen by config and the configured time zone.
type diary struct {
	cfg      *config.Config
	store    *storage.Store
	settings *settings.Settings
	loc      *time.Location
}

func openDiary(ctx context.Context, configPath string) (*diary, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening diary: %w", err)
	}

	var kv settings.KV = store
	if cfg.SettingsBackend == config.SettingsBackendFile {
		kv = settings.NewFileKV(cfg.SettingsFile)
	}

	log.ForService("cmd").Debugf("diary %s, settings backend %s, zone %s", cfg.DatabasePath(), cfg.SettingsBackend, loc)
	return &diary{cfg: cfg, store: store, settings: settings.New(kv), loc: loc}, nil
}

func (d *diary) Close() {
	if err := d.store.Close(); err != nil {
		log.ForService("cmd").Warnf("failed to close diary: %v", err)
	}
}

// withDiary opens the diary named by the --config flag for the duration of fn.
func withDiary(ctx context.Context, c *cli.Command, fn func(*diary) error) error {
	d, err := openDiary(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

// parseDayArg parses a YYYY-MM-DD argument in loc. Empty means today.
func parseDayArg(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" || raw == "today" {
		return core.StartOfDay(time.Now(), loc), nil
	}
	if raw == "yesterday" {
		return core.StartOfDay(time.Now().In(loc).AddDate(0, 0, -1), loc), nil
	}
	return core.ParseDay(raw, loc)
}

func stdout(c *cli.Command) io.Writer {
	if root := c.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func stdin(c *cli.Command) io.Reader {
	if root := c.Root(); root != nil && root.Reader != nil {
		return root.Reader
	}
	return os.Stdin
}
