package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xvierd/wellflow/internal/adapters/clock"
	"github.com/xvierd/wellflow/internal/adapters/filestore"
	"github.com/xvierd/wellflow/internal/adapters/git"
	"github.com/xvierd/wellflow/internal/adapters/notification"
	"github.com/xvierd/wellflow/internal/adapters/storage"
	"github.com/xvierd/wellflow/internal/adapters/tui"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/ports"
	"github.com/xvierd/wellflow/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	configPath string
	logger     *slog.Logger
	clock      ports.Clock
	storage    ports.Storage
	git        ports.GitDetector
	notifier   *notification.Notifier
	timer      ports.Timer
	tasks      *services.TaskService
	ledger     *services.LedgerService
	sessions   *services.SessionService
	state      *services.StateService
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app *appDeps

// ownsApp is set when initializeServices built app and must close it.
var ownsApp bool

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	if app != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		cfg = config.DefaultConfig()
		if cfg.Storage.DataDir, err = filepath.Abs(filepath.Dir(path)); err != nil {
			return err
		}
	}

	logger, err := newLogger(os.Stderr, cfg.Log.Level, verbose)
	if err != nil {
		return err
	}

	deps, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	deps.configPath = path
	app, ownsApp = deps, true
	return nil
}

// newLogger builds the process logger. verbose forces debug output.
func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// buildApp wires storage, adapters and services for cfg.
func buildApp(cfg *config.Config, logger *slog.Logger) (*appDeps, error) {
	path := dbPath
	if path == "" {
		path = config.GetDBPath(cfg)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	kv := store.KV()
	if cfg.Storage.Backend == config.BackendFile {
		fileKV, err := filestore.New(config.GetStoreDir(cfg))
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		kv = fileKV
	}

	lock, err := filestore.NewLocker(filepath.Join(cfg.Storage.DataDir, "locks"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	deps := &appDeps{
		config:   cfg,
		logger:   logger,
		clock:    clock.System{},
		storage:  store,
		git:      git.NewDetector(),
		notifier: notification.New(&cfg.Notifications, logger),
		timer:    tui.NewTimer(&cfg.Theme),
	}
	deps.wire(kv, lock)
	return deps, nil
}

// wire builds the services on top of the adapters already set on d.
func (d *appDeps) wire(kv ports.KVStore, lock ports.SessionLock) {
	d.ledger = services.NewLedgerService(kv, d.clock, d.logger)
	d.ledger.SetDefaultGoal(d.config.Ledger.DailyGoal)

	d.tasks = services.NewTaskService(kv, d.ledger, d.clock, d.logger)

	d.sessions = services.NewSessionService(kv, d.storage.History(), d.tasks, d.ledger, d.clock, lock, d.git, d.logger)
	d.sessions.SetDefaults(services.FocusDefaults{
		Duration:          d.config.Focus.DefaultDuration.Minutes(),
		BreakType:         d.config.Focus.BreakType(),
		SkipTrailingBreak: d.config.Focus.SkipTrailingBreak,
	})

	d.state = services.NewStateService(d.tasks, d.ledger, d.sessions)
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app == nil || !ownsApp {
		return nil
	}
	err := app.storage.Close()
	app, ownsApp = nil, false
	return err
}
