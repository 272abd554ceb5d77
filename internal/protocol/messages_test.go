package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/tui-connect4/internal/game"
)

func TestDecode(t *testing.T) {
	deadline := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, msg Message)
	}{
		{
			name:  "lobby link",
			input: `{"type":"lobbyLink","lobby":"abc","qrCode":{"img":"x","width":3}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(LobbyLink)
				if !ok || m.Lobby != "abc" || len(m.QRCode) == 0 {
					t.Errorf("got %#v", msg)
				}
			},
		},
		{
			name:  "lobby sync",
			input: `{"type":"lobbySync","players":[12,34]}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(LobbySync)
				if !ok || len(m.Players) != 2 || m.Players[1] != 34 {
					t.Errorf("got %#v", msg)
				}
			},
		},
		{
			name:  "game setup",
			input: `{"type":"gameSetup","role":1,"config":{"timePerTurn":5000,"allowDraws":true}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(GameSetup)
				if !ok || m.Role == nil || *m.Role != game.Player2 {
					t.Fatalf("got %#v", msg)
				}
				if m.Config == nil || !m.Config.AllowDraws || m.Config.TimePerTurn.Duration != 5*time.Second {
					t.Errorf("config = %+v", m.Config)
				}
			},
		},
		{
			name: "game sync",
			input: `{"type":"gameSync","round":3,"timeout":"2026-01-02T03:04:05.000Z",` +
				`"game":{"field":[[null,null,null,null,null,null,0]],` +
				`"state":{"player":1,"turn":1,"result":null,"lastMove":0},` +
				`"rules":{"startingPlayer":0,"allowDraws":false}}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(GameSync)
				if !ok {
					t.Fatalf("got %#v", msg)
				}
				if m.Round != 3 || m.Timeout == nil || !m.Timeout.Equal(deadline) {
					t.Errorf("round = %d, timeout = %v", m.Round, m.Timeout)
				}
				if m.Game.Field[0][6] != game.CellPlayer1 || m.Game.State.Turn != 1 {
					t.Errorf("game = %+v", m.Game)
				}
			},
		},
		{
			name:  "restart request",
			input: `{"type":"gameRestartRequest","player":0,"req":{"timeout":"2026-01-02T03:04:05Z"}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(GameRestartRequest)
				if !ok || m.Request == nil || !m.Request.Timeout.Equal(deadline) || m.Request.Config != nil {
					t.Errorf("got %#v", msg)
				}
			},
		},
		{
			name:  "restart request cleared",
			input: `{"type":"gameRestartRequest","player":1}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(GameRestartRequest)
				if !ok || m.Player != game.Player2 || m.Request != nil {
					t.Errorf("got %#v", msg)
				}
			},
		},
		{
			name:  "pong",
			input: `{"type":"pong","sent":100,"received":150}`,
			check: func(t *testing.T, msg Message) {
				if m, ok := msg.(Pong); !ok || m.Sent != 100 || m.Received != 150 {
					t.Errorf("got %#v", msg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			tt.check(t, msg)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `{"type":`, nil},
		{"missing type", `{"lobby":"x"}`, ErrMissingType},
		{"unknown type", `{"type":"teapot"}`, ErrUnknownType},
		{"bad payload", `{"type":"lobbyCode","code":"x"}`, nil},
		{"restart request from player 2", `{"type":"gameRestartRequest","player":2}`, nil},
		{"setup with role 5", `{"type":"gameSetup","role":5}`, nil},
		{"sync with player 3", `{"type":"gameSync","round":1,` +
			`"game":{"field":[],"state":{"player":3,"turn":0,"result":null,"lastMove":null},` +
			`"rules":{"startingPlayer":0,"allowDraws":false}}}`, nil},
		{"sync with starting player 2", `{"type":"gameSync","round":1,` +
			`"game":{"field":[],"state":{"player":0,"turn":0,"result":null,"lastMove":null},` +
			`"rules":{"startingPlayer":2,"allowDraws":false}}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatal("Decode() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	col := 3
	cfg := game.Config{AllowDraws: true}
	extra := [2]Millis{1500, 0}

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"end turn", GameEndTurn{Turn: 4, Col: &col}, `{"type":"gameEndTurn","turn":4,"col":3}`},
		{"pass", GameEndTurn{Turn: 5}, `{"type":"gameEndTurn","turn":5}`},
		{"restart", GameRestart{}, `{"type":"gameRestart"}`},
		{"restart with config", GameRestart{Config: &cfg}, `{"type":"gameRestart","allowDraws":true}`},
		{"vote", GamePlayerSelectionVote{WantsToStart: true}, `{"type":"gamePlayerSelectionVote","wantsToStart":true}`},
		{"response", GameRestartResponse{Accepted: false}, `{"type":"gameRestartResponse","accepted":false}`},
		{"ping", Ping{Sent: 42}, `{"type":"ping","sent":42}`},
		{
			"pick player",
			LobbyPickPlayer{Code: 7, Role: game.Player2, Config: cfg, Round: 2, ExtraTime: &extra},
			`{"type":"lobbyPickPlayer","code":7,"role":1,"game":null,"config":{"allowDraws":true},"round":2,"extraTime":[1500,0]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Encode() = %s, expected %s", data, tt.want)
			}
			if !json.Valid(data) {
				t.Error("Encode() produced invalid JSON")
			}
		})
	}
}
