package relay

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/tui-connect4/internal/game"
)

// Event is pushed from a session to its handler.
type Event interface {
	relayEvent()
}

// Handler receives session events. Events of one connection are delivered
// in order from a single goroutine.
type Handler interface {
	HandleRelayEvent(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

// HandleRelayEvent calls f.
func (f HandlerFunc) HandleRelayEvent(ev Event) { f(ev) }

// Connected is sent once the connection is open.
type Connected struct{}

// Disconnected is sent exactly once per connection attempt.
type Disconnected struct {
	Reason DisconnectReason
}

// LobbyLinked carries the invite of a hosted lobby.
type LobbyLinked struct {
	Lobby string
	QR    json.RawMessage
}

// LobbySynced lists the players waiting in the hosted lobby.
type LobbySynced struct {
	Players []int
}

// PlayerCodeAssigned carries the code a joining player shows the host.
type PlayerCodeAssigned struct {
	Code int
}

// GameSetup assigns a role or a configuration.
type GameSetup struct {
	Role   *game.Player
	Config *game.Config
}

// GameSynced replaces the game with the relay's copy. Timeout is the turn
// deadline on the relay clock, if turns are timed.
type GameSynced struct {
	Game    *game.Game
	Round   int
	Timeout *time.Time
}

// PlayerSelectionUpdated reports the vote on who starts.
type PlayerSelectionUpdated struct {
	P1Voted bool
	P2Voted bool
}

// Voted reports whether p has voted.
func (e PlayerSelectionUpdated) Voted(p game.Player) bool {
	if p == game.Player1 {
		return e.P1Voted
	}
	return e.P2Voted
}

// RestartRequest is a pending restart proposal.
type RestartRequest struct {
	Config  *game.Config
	Timeout time.Time
}

// RestartRequested sets (Request != nil) or clears the request of Player.
type RestartRequested struct {
	Player  game.Player
	Request *RestartRequest
}

// LatencyUpdated carries fresh estimates after each pong.
type LatencyUpdated struct {
	Delay       time.Duration
	ClockOffset time.Duration
}

func (Connected) relayEvent()              {}
func (Disconnected) relayEvent()           {}
func (LobbyLinked) relayEvent()            {}
func (LobbySynced) relayEvent()            {}
func (PlayerCodeAssigned) relayEvent()     {}
func (GameSetup) relayEvent()              {}
func (GameSynced) relayEvent()             {}
func (PlayerSelectionUpdated) relayEvent() {}
func (RestartRequested) relayEvent()       {}
func (LatencyUpdated) relayEvent()         {}
