package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-connect4/internal/core"
	"github.com/vovakirdan/tui-connect4/internal/game"
)

// KeyMap defines the key bindings of the board.
type KeyMap struct {
	Left       key.Binding
	Right      key.Binding
	Drop       key.Binding
	Column     key.Binding
	Restart    key.Binding
	Preset     key.Binding
	Accept     key.Binding
	Decline    key.Binding
	Host       key.Binding
	Join       key.Binding
	Disconnect key.Binding
	History    key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Drop, k.Restart, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Drop, k.Column},
		{k.Restart, k.Preset, k.Accept, k.Decline},
		{k.Host, k.Join, k.Disconnect, k.History},
		{k.Help, k.Back, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings. Online bindings are left out
// when the relay is not available.
func DefaultKeyMap(online bool) KeyMap {
	k := KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "right"),
		),
		Drop: key.NewBinding(
			key.WithKeys(" ", "space", "enter", "down", "s"),
			key.WithHelp("space", "drop"),
		),
		Column: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
			key.WithHelp("1-7", "drop in column"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Preset: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next rules"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		Host: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "host"),
		),
		Join: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "join"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "leave"),
		),
		History: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	if !online {
		k.Host.SetEnabled(false)
		k.Join.SetEnabled(false)
		k.Disconnect.SetEnabled(false)
	}
	return k
}

// Action translates a key message to a board action.
func (k KeyMap) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Left):
		return core.ActionLeft
	case key.Matches(msg, k.Right):
		return core.ActionRight
	case key.Matches(msg, k.Drop), key.Matches(msg, k.Column):
		return core.ActionDrop
	case key.Matches(msg, k.Restart):
		return core.ActionRestart
	case key.Matches(msg, k.Preset):
		return core.ActionPreset
	case key.Matches(msg, k.Accept):
		return core.ActionAccept
	case key.Matches(msg, k.Decline):
		return core.ActionDecline
	case key.Matches(msg, k.Host):
		return core.ActionHost
	case key.Matches(msg, k.Join):
		return core.ActionJoin
	case key.Matches(msg, k.Disconnect):
		return core.ActionDisconnect
	case key.Matches(msg, k.History):
		return core.ActionHistory
	case key.Matches(msg, k.Help):
		return core.ActionHelp
	case key.Matches(msg, k.Back):
		return core.ActionBack
	}
	return core.ActionNone
}

// Column returns the zero-based column of a number key.
func (k KeyMap) Column(msg tea.KeyMsg) (int, bool) {
	if !key.Matches(msg, k.Column) {
		return 0, false
	}
	col := int(msg.String()[0] - '1')
	return col, col >= 0 && col < game.FieldSize
}
