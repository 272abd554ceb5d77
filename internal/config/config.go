// Package config provides YAML-based client configuration loading and
// named rule presets.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-connect4/internal/game"
)

// ClientConfig contains all configuration for the connect4 client.
type ClientConfig struct {
	Relay   RelayConfig   `yaml:"relay"`
	Game    GameConfig    `yaml:"game"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// RelayConfig defines how to reach the relay server.
type RelayConfig struct {
	URL               string        `yaml:"url"`
	InviteBaseURL     string        `yaml:"invite_base_url"` // Base of shareable lobby links
	ProtocolVersion   int           `yaml:"protocol_version"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// GameConfig defines the rules of new games. Zero durations disable timers.
type GameConfig struct {
	TimePerTurn time.Duration `yaml:"time_per_turn"`
	TimeCap     time.Duration `yaml:"time_cap"`
	AllowDraws  bool          `yaml:"allow_draws"`
}

// LogConfig defines logging behaviour.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig defines where history and settings are kept.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SSHConfig defines the `serve` SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Rules converts the game section to the engine configuration. Turn limits
// under the minimum are treated as disabled.
func (g GameConfig) Rules() game.Config {
	return game.Config{
		TimePerTurn: game.TimerDuration(g.TimePerTurn),
		TimeCap:     game.TimerDuration(g.TimeCap),
		AllowDraws:  g.AllowDraws,
	}
}

// FromRules is the inverse of Rules.
func FromRules(cfg game.Config) GameConfig {
	g := GameConfig{AllowDraws: cfg.AllowDraws}
	if cfg.TimePerTurn.Valid {
		g.TimePerTurn = cfg.TimePerTurn.Duration
	}
	if cfg.TimeCap.Valid {
		g.TimeCap = cfg.TimeCap.Duration
	}
	return g
}

// LogLevel parses the configured log level, defaulting to info.
func (c ClientConfig) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// InviteLink returns the shareable link for a lobby.
func (r RelayConfig) InviteLink(lobbyID string) string {
	if r.InviteBaseURL == "" || lobbyID == "" {
		return ""
	}
	u, err := url.Parse(r.InviteBaseURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("lobby", lobbyID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate checks the values that cannot be defaulted.
func (c ClientConfig) Validate() error {
	var errs []error
	if c.Relay.URL == "" {
		errs = append(errs, errors.New("relay.url is required"))
	} else if u, err := url.Parse(c.Relay.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("relay.url %q must be a ws:// or wss:// URL", c.Relay.URL))
	}
	if c.Relay.ProtocolVersion < 1 {
		errs = append(errs, fmt.Errorf("relay.protocol_version must be positive, got %d", c.Relay.ProtocolVersion))
	}
	if c.Game.TimePerTurn < 0 || c.Game.TimeCap < 0 {
		errs = append(errs, errors.New("game timers must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); c.Log.Level != "" && err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
