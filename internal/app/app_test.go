package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-connect4/internal/config"
	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/storage"
)

func testConfig(t *testing.T) config.ClientConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "connect4.db")
	cfg.Game = config.GameConfig{TimePerTurn: 30 * time.Second, TimeCap: time.Minute}
	return cfg
}

func TestNewUsesConfiguredRules(t *testing.T) {
	cfg := testConfig(t)

	a := New(Options{Config: cfg, LogOutput: io.Discard})
	defer a.Close()

	require.NotNil(t, a.Store)
	assert.Equal(t, cfg.Game.Rules(), a.Coordinator.Snapshot().Config)
}

func TestNewPrefersSavedRules(t *testing.T) {
	cfg := testConfig(t)
	saved := game.Config{AllowDraws: true}

	store, err := storage.Open(cfg.Storage.Path)
	require.NoError(t, err)
	require.NoError(t, store.SaveGameConfig(saved))
	require.NoError(t, store.Close())

	a := New(Options{Config: cfg, LogOutput: io.Discard})
	assert.Equal(t, saved, a.Coordinator.Snapshot().Config)
	require.NoError(t, a.Close())

	b := New(Options{Config: cfg, LogOutput: io.Discard, KeepRules: true})
	defer b.Close()
	assert.Equal(t, cfg.Game.Rules(), b.Coordinator.Snapshot().Config)
}

func TestNewWithoutDatabase(t *testing.T) {
	cfg := testConfig(t)
	// A file where the database directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.Storage.Path = filepath.Join(blocker, "connect4.db")

	a := New(Options{Config: cfg, LogOutput: io.Discard})
	defer a.Close()

	assert.Nil(t, a.Store)
	assert.NotNil(t, a.Coordinator.Snapshot().Game)
}

func TestOpenLogFile(t *testing.T) {
	cfg := testConfig(t)

	f, err := OpenLogFile(cfg)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, filepath.Join(filepath.Dir(cfg.Storage.Path), "connect4.log"), f.Name())
}
