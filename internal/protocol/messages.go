// Package protocol defines the JSON messages exchanged with the relay.
// Every message is an object carrying a "type" discriminant.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-connect4/internal/game"
)

// Version is the protocol version requested when connecting.
const Version = 1

// Type is the message discriminant.
type Type string

// Inbound message types.
const (
	TypeLobbyLink           Type = "lobbyLink"
	TypeLobbySync           Type = "lobbySync"
	TypeLobbyCode           Type = "lobbyCode"
	TypeGameSetup           Type = "gameSetup"
	TypeGameSync            Type = "gameSync"
	TypeGamePlayerSelection Type = "gamePlayerSelection"
	TypeGameRestartRequest  Type = "gameRestartRequest"
	TypePong                Type = "pong"
)

// Outbound message types.
const (
	TypeLobbyPickPlayer         Type = "lobbyPickPlayer"
	TypeGamePlayerSelectionVote Type = "gamePlayerSelectionVote"
	TypeGameEndTurn             Type = "gameEndTurn"
	TypeGameRestart             Type = "gameRestart"
	TypeGameRestartResponse     Type = "gameRestartResponse"
	TypePing                    Type = "ping"
)

var (
	// ErrMissingType is returned for messages without a discriminant.
	ErrMissingType = errors.New("protocol: missing message type")
	// ErrUnknownType is returned for discriminants this client does not handle.
	ErrUnknownType = errors.New("protocol: unknown message type")
)

// Message is implemented by every protocol message.
type Message interface {
	MessageType() Type
}

// LobbyLink carries the invite id of a freshly created lobby. The QR code
// is passed through untouched.
type LobbyLink struct {
	Lobby  string          `json:"lobby"`
	QRCode json.RawMessage `json:"qrCode,omitempty"`
}

// LobbySync lists the codes of players waiting in the host's lobby.
type LobbySync struct {
	Players []int `json:"players"`
}

// LobbyCode is the code assigned to a joining player.
type LobbyCode struct {
	Code int `json:"code"`
}

// GameSetup assigns a role and the game configuration.
type GameSetup struct {
	Role   *game.Player `json:"role,omitempty"`
	Config *game.Config `json:"config,omitempty"`
}

// GameSync is the authoritative game state.
type GameSync struct {
	Game    game.Game  `json:"game"`
	Round   int        `json:"round"`
	Timeout *time.Time `json:"timeout,omitempty"`
}

// GamePlayerSelection reports which players voted on who starts.
type GamePlayerSelection struct {
	P1Voted bool `json:"p1Voted"`
	P2Voted bool `json:"p2Voted"`
}

// Voted reports whether p has voted.
func (m GamePlayerSelection) Voted(p game.Player) bool {
	if p == game.Player1 {
		return m.P1Voted
	}
	return m.P2Voted
}

// RestartRequestDetails describe a pending restart request.
type RestartRequestDetails struct {
	Config  *game.Config `json:"config,omitempty"`
	Timeout time.Time    `json:"timeout"`
}

// GameRestartRequest sets or clears the restart request of a player.
type GameRestartRequest struct {
	Player  game.Player            `json:"player"`
	Request *RestartRequestDetails `json:"req,omitempty"`
}

// Pong answers a ping. Both timestamps are in Unix milliseconds; Received
// is the relay's clock.
type Pong struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}

// LobbyPickPlayer seats a waiting player. Game is null while the players
// are still voting on who starts.
type LobbyPickPlayer struct {
	Code      int         `json:"code"`
	Role      game.Player `json:"role"`
	Game      *game.Game  `json:"game"`
	Config    game.Config `json:"config"`
	Round     int         `json:"round"`
	ExtraTime *[2]Millis  `json:"extraTime,omitempty"`
}

// GamePlayerSelectionVote tells whether the player wants to start.
type GamePlayerSelectionVote struct {
	WantsToStart bool `json:"wantsToStart"`
}

// GameEndTurn ends the given turn. A nil column passes.
type GameEndTurn struct {
	Turn int  `json:"turn"`
	Col  *int `json:"col,omitempty"`
}

// GameRestart asks for a new game. A non-nil config proposes changes that
// the opponent has to accept.
type GameRestart struct {
	*game.Config
}

// GameRestartResponse answers the opponent's restart request.
type GameRestartResponse struct {
	Accepted bool `json:"accepted"`
}

// Ping carries the local send time in Unix milliseconds.
type Ping struct {
	Sent int64 `json:"sent"`
}

func (LobbyLink) MessageType() Type               { return TypeLobbyLink }
func (LobbySync) MessageType() Type               { return TypeLobbySync }
func (LobbyCode) MessageType() Type               { return TypeLobbyCode }
func (GameSetup) MessageType() Type               { return TypeGameSetup }
func (GameSync) MessageType() Type                { return TypeGameSync }
func (GamePlayerSelection) MessageType() Type     { return TypeGamePlayerSelection }
func (GameRestartRequest) MessageType() Type      { return TypeGameRestartRequest }
func (Pong) MessageType() Type                    { return TypePong }
func (LobbyPickPlayer) MessageType() Type         { return TypeLobbyPickPlayer }
func (GamePlayerSelectionVote) MessageType() Type { return TypeGamePlayerSelectionVote }
func (GameEndTurn) MessageType() Type             { return TypeGameEndTurn }
func (GameRestart) MessageType() Type             { return TypeGameRestart }
func (GameRestartResponse) MessageType() Type     { return TypeGameRestartResponse }
func (Ping) MessageType() Type                    { return TypePing }

// Millis is a duration encoded as whole milliseconds.
type Millis int64

// ToMillis converts d.
func ToMillis(d time.Duration) Millis {
	return Millis(d.Milliseconds())
}

// Duration converts m back.
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// UnixMillis converts t to a wire timestamp.
func UnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses an inbound message.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	var msg Message
	switch env.Type {
	case TypeLobbyLink:
		msg = &LobbyLink{}
	case TypeLobbySync:
		msg = &LobbySync{}
	case TypeLobbyCode:
		msg = &LobbyCode{}
	case TypeGameSetup:
		msg = &GameSetup{}
	case TypeGameSync:
		msg = &GameSync{}
	case TypeGamePlayerSelection:
		msg = &GamePlayerSelection{}
	case TypeGameRestartRequest:
		msg = &GameRestartRequest{}
	case TypePong:
		msg = &Pong{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", env.Type, err)
	}
	return deref(msg), nil
}

// deref returns message values rather than pointers so handlers can
// switch on the plain types.
func deref(msg Message) Message {
	switch m := msg.(type) {
	case *LobbyLink:
		return *m
	case *LobbySync:
		return *m
	case *LobbyCode:
		return *m
	case *GameSetup:
		return *m
	case *GameSync:
		return *m
	case *GamePlayerSelection:
		return *m
	case *GameRestartRequest:
		return *m
	case *Pong:
		return *m
	}
	return msg
}

// Encode serializes msg with its type discriminant.
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", msg.MessageType(), err)
	}
	head, err := json.Marshal(envelope{Type: msg.MessageType()})
	if err != nil {
		return nil, err
	}
	if len(body) <= 2 {
		return head, nil
	}
	// splice {"type":...} and the body's fields into one object
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}
