package multiplayer

import (
	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/relay"
)

// CoordinatorMessage represents a message processed by the coordinator loop.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// ConnectMsg opens a lobby, or joins LobbyID when it is set.
type ConnectMsg struct {
	LobbyID string
}

// AcceptPlayerMsg seats the waiting player with Code as Role.
type AcceptPlayerMsg struct {
	Code int
	Role game.Player
}

// SetPlayerCodeMsg sets the code of a joining player.
type SetPlayerCodeMsg struct {
	Code *int
}

// EndTurnMsg drops a piece into Col, or passes when Col is nil.
type EndTurnMsg struct {
	Col *int
}

// RestartGameMsg starts a new game, optionally with a new configuration.
type RestartGameMsg struct {
	Config *game.Config
}

// SelectStartingPlayerMsg picks who starts a local game.
type SelectStartingPlayerMsg struct {
	Player game.Player
}

// VoteStartingPlayerMsg votes on who starts a remote game.
type VoteStartingPlayerMsg struct {
	WantsToStart bool
}

// DismissPlayerSelectionMsg closes the starting player dialog.
type DismissPlayerSelectionMsg struct{}

// RespondToRestartRequestMsg answers the opponent's restart request.
type RespondToRestartRequestMsg struct {
	Accepted bool
}

// DisconnectMsg leaves the lobby or remote game.
type DisconnectMsg struct{}

// DismissDisconnectReasonMsg hides the last disconnect reason.
type DismissDisconnectReasonMsg struct{}

// PauseTurnTimerMsg pauses or resumes the local turn timer.
type PauseTurnTimerMsg struct {
	Paused bool
}

// RelayEventMsg wraps an event from the relay session.
type RelayEventMsg struct {
	Event relay.Event
}

// turnTimeoutMsg fires when a local turn timer runs out.
type turnTimeoutMsg struct {
	gen uint64
}

// restartExpiredMsg fires when a restart request lapses.
type restartExpiredMsg struct {
	player game.Player
	gen    uint64
}

func (ConnectMsg) coordinatorMessage()                 {}
func (AcceptPlayerMsg) coordinatorMessage()            {}
func (SetPlayerCodeMsg) coordinatorMessage()           {}
func (EndTurnMsg) coordinatorMessage()                 {}
func (RestartGameMsg) coordinatorMessage()             {}
func (SelectStartingPlayerMsg) coordinatorMessage()    {}
func (VoteStartingPlayerMsg) coordinatorMessage()      {}
func (DismissPlayerSelectionMsg) coordinatorMessage()  {}
func (RespondToRestartRequestMsg) coordinatorMessage() {}
func (DisconnectMsg) coordinatorMessage()              {}
func (DismissDisconnectReasonMsg) coordinatorMessage() {}
func (PauseTurnTimerMsg) coordinatorMessage()          {}
func (RelayEventMsg) coordinatorMessage()              {}
func (turnTimeoutMsg) coordinatorMessage()             {}
func (restartExpiredMsg) coordinatorMessage()          {}
