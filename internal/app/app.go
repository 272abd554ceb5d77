// Package app wires the configuration, the database, the relay session and
// the coordinator of one client.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-connect4/internal/config"
	"github.com/vovakirdan/tui-connect4/internal/multiplayer"
	"github.com/vovakirdan/tui-connect4/internal/platform/tui"
	"github.com/vovakirdan/tui-connect4/internal/relay"
	"github.com/vovakirdan/tui-connect4/internal/storage"
)

// Options configures an App.
type Options struct {
	Config    config.ClientConfig
	LogOutput io.Writer
	// KeepRules ignores the rules saved by the previous session.
	KeepRules bool
	Clock     clock.Clock
}

// App is a running client.
type App struct {
	Config      config.ClientConfig
	Logger      *log.Logger
	Store       *storage.Store // nil when the database could not be opened
	Relay       *relay.Session
	Coordinator *multiplayer.Coordinator
}

// NewLogger creates the client logger at the configured level.
func NewLogger(cfg config.ClientConfig, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "connect4",
		Level:           cfg.LogLevel(),
	})
}

// New opens the database and starts the coordinator. A database that
// cannot be opened only disables history and saved rules.
func New(opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	cfg := opts.Config
	logger := NewLogger(cfg, opts.LogOutput)
	a := &App{Config: cfg, Logger: logger}

	rules := cfg.Game.Rules()
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open database, history is disabled", "path", cfg.Storage.Path, "err", err)
	} else {
		a.Store = store
		saved, ok, err := store.LoadGameConfig()
		switch {
		case err != nil:
			logger.Warn("could not load saved rules", "err", err)
		case ok && !opts.KeepRules:
			rules = saved
		}
	}

	a.Relay = relay.NewSession(relay.Options{
		URL:               cfg.Relay.URL,
		ProtocolVersion:   cfg.Relay.ProtocolVersion,
		ConnectTimeout:    cfg.Relay.ConnectTimeout,
		HeartbeatInterval: cfg.Relay.HeartbeatInterval,
		Clock:             opts.Clock,
		Logger:            logger.WithPrefix("relay"),
		Online:            relay.SystemOnline,
	})

	a.Coordinator = multiplayer.NewCoordinator(multiplayer.Options{
		Config: rules,
		Clock:  opts.Clock,
		Logger: logger.WithPrefix("game"),
	})
	a.Coordinator.SetRelay(a.Relay)
	if a.Store != nil {
		a.Coordinator.SetResultSaver(a.Store)
		a.Coordinator.SetConfigSaver(a.Store)
	}
	a.Relay.SetHandler(a.Coordinator)
	a.Coordinator.Start()

	logger.Debug("client started", "relay", cfg.Relay.URL, "rules", config.FromRules(rules).Describe())
	return a
}

// Run shows the board until the user quits.
func (a *App) Run(width, height int) error {
	return tui.Run(tui.Options{
		Coordinator: a.Coordinator,
		Store:       a.Store,
		InviteLink:  a.Config.Relay.InviteLink,
		Online:      a.Config.Relay.URL != "",
		Width:       width,
		Height:      height,
	})
}

// Close leaves any online game and releases the database.
func (a *App) Close() error {
	a.Relay.Disconnect()
	a.Coordinator.Stop()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// OpenLogFile opens the log file next to the database. Logs cannot go to
// the terminal while the board is shown.
func OpenLogFile(cfg config.ClientConfig) (*os.File, error) {
	path := cfg.Storage.Path
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "connect4.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}
