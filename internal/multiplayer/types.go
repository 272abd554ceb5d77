// Package multiplayer coordinates a game between local play and play over
// the relay. The Coordinator owns the game, the lobby and all timers; UI
// intents, relay events and timer expiries reach it as messages handled one
// at a time on its own goroutine.
package multiplayer

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/relay"
)

// Mode tells where the authoritative game lives.
type Mode int

const (
	// ModeLocal is a hot-seat game simulated in this process.
	ModeLocal Mode = iota
	// ModeRemote is a game mirrored from the relay.
	ModeRemote
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of String.
func ParseMode(s string) Mode {
	if s == "remote" {
		return ModeRemote
	}
	return ModeLocal
}

// PlayerSelection tells whether and which starting player dialog is shown.
type PlayerSelection int

const (
	SelectionHidden PlayerSelection = iota
	SelectionVoting
	SelectionWaiting
)

func (p PlayerSelection) String() string {
	switch p {
	case SelectionHidden:
		return "hidden"
	case SelectionVoting:
		return "voting"
	case SelectionWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Lobby is the waiting room before a remote game. A host sees the invite
// and the codes of waiting players; a joiner sees its own code.
type Lobby struct {
	IsHost bool
	ID     string
	QR     json.RawMessage
	Codes  []int
	Code   *int
}

func newLobby(id string) *Lobby {
	if id != "" {
		return &Lobby{ID: id}
	}
	return &Lobby{IsHost: true}
}

func (l *Lobby) clone() *Lobby {
	if l == nil {
		return nil
	}
	c := *l
	c.Codes = slices.Clone(l.Codes)
	if l.Code != nil {
		code := *l.Code
		c.Code = &code
	}
	return &c
}

// RestartRequest is a restart proposed by a player that needs the
// opponent's answer. Expires is on the local clock.
type RestartRequest struct {
	Config   *game.Config
	Received time.Time
	Expires  time.Time
}

// State is a snapshot of the coordinator published after every change.
// Snapshots are never mutated once published.
type State struct {
	Game   *game.Game
	Config game.Config
	Mode   Mode
	Lobby  *Lobby

	Connected          bool
	Role               *game.Player
	DisconnectReason   relay.DisconnectReason
	DisconnectedByUser bool

	Round int
	// RemoteRound is the last round synced from the relay, or -1.
	RemoteRound int

	RestartRequests [2]*RestartRequest
	PlayerSelection PlayerSelection

	// TurnDeadline is when the current turn ends on the local clock.
	TurnDeadline *time.Time
	TimerPaused  bool
	ExtraTime    [2]time.Duration

	Delay       time.Duration
	ClockOffset time.Duration
}

// MyTurn reports whether this client may move now.
func (s State) MyTurn() bool {
	if s.Game == nil || s.Game.Resolved() || s.Lobby != nil {
		return false
	}
	if s.Mode == ModeLocal {
		return true
	}
	return s.Role != nil && *s.Role == s.Game.State.Player
}

// OpponentRequest returns the pending restart request of the opponent.
func (s State) OpponentRequest() *RestartRequest {
	if s.Role == nil {
		return nil
	}
	return s.RestartRequests[s.Role.Other()]
}

// MatchResultData is a finished game handed to the result saver.
type MatchResultData struct {
	MatchID    string
	Mode       Mode
	Round      int
	Winner     game.Winner
	Turns      int
	AllowDraws bool
	Timed      bool
}

// MatchResultSaver persists finished games.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// ConfigSaver persists the game configuration whenever it changes.
type ConfigSaver interface {
	SaveGameConfig(cfg game.Config) error
}
