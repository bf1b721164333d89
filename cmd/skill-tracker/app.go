package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/0xmhha/skill-tracker/pkg/config"
	"github.com/0xmhha/skill-tracker/pkg/display"
	"github.com/0xmhha/skill-tracker/pkg/kvstore"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/store"
	"github.com/0xmhha/skill-tracker/pkg/store/local"
	"github.com/0xmhha/skill-tracker/pkg/store/relational"
	"github.com/0xmhha/skill-tracker/pkg/tracker"
)

// app bundles what a command needs: configuration, logger and a loaded
// tracker.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	tracker *tracker.Tracker
}

// loadConfig loads configuration and builds the logger it describes.
func loadConfig(opts *globalOptions) (*config.Config, logger.Logger, error) {
	cfg, err := config.NewLoader(opts.configPath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return cfg, log, nil
}

// loadApp loads configuration, opens the configured store and reads the
// user's records. Callers must call close.
func loadApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	t, err := openTracker(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, tracker: t}, nil
}

// close releases the store.
func (a *app) close() {
	if err := a.tracker.Close(); err != nil {
		a.log.Error("failed to close store", "error", err)
	}
}

// openStore opens the data store selected by cfg.Storage.Backend.
func openStore(cfg *config.Config, log logger.Logger) (store.DataStore, error) {
	switch cfg.Storage.Backend {
	case store.BackendLocal:
		kv, err := kvstore.New(kvstore.Config{
			Path:    cfg.Storage.LocalPath,
			Timeout: cfg.Storage.Timeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}

		ds, err := local.New(local.Config{KV: kv}, log)
		if err != nil {
			if closeErr := kv.Close(); closeErr != nil {
				log.Error("failed to close document store", "error", closeErr)
			}
			return nil, err
		}
		return ds, nil

	case store.BackendSQL:
		ds, err := relational.Open(relational.Config{
			Client: relational.ClientConfig{
				Path:        cfg.Storage.SQLDSN,
				BusyTimeout: cfg.Storage.Timeout,
				Debug:       cfg.Logging.Level == "debug",
			},
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql store: %w", err)
		}
		return ds, nil

	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownBackend, cfg.Storage.Backend)
	}
}

// openTracker opens the store and returns a tracker loaded from it.
func openTracker(ctx context.Context, cfg *config.Config, log logger.Logger) (*tracker.Tracker, error) {
	ds, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	t, err := tracker.New(tracker.Config{Store: ds, UserID: cfg.User.ID}, log)
	if err != nil {
		_ = ds.Close()
		return nil, err
	}

	if err := t.Load(ctx); err != nil {
		if closeErr := t.Close(); closeErr != nil {
			log.Error("failed to close store", "error", closeErr)
		}
		return nil, err
	}

	return t, nil
}

// formatter builds the output formatter from configuration and flags.
// Flags win over the configuration file.
func formatter(cfg *config.Config, opts *globalOptions, w io.Writer) (display.Formatter, error) {
	format := cfg.Display.Format
	if opts.format != "" {
		format = opts.format
	}

	switch display.Format(format) {
	case display.FormatTable, display.FormatJSON, display.FormatSimple:
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidDisplayFormat, format)
	}

	return display.New(display.Config{
		Format:  display.Format(format),
		Color:   cfg.Display.ColorEnabled && !opts.noColor && isTerminal(w),
		Compact: cfg.Display.Compact || opts.compact,
	}), nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && display.IsTerminal(f.Fd())
}
