// Package tui provides the Bubble Tea board, the match history view and
// the Wish SSH server that serves hot-seat games.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-connect4/internal/multiplayer"
)

// TickMsg refreshes the turn countdown.
type TickMsg time.Time

// stateMsg carries a coordinator snapshot into the Bubble Tea loop.
type stateMsg multiplayer.State

// closedMsg is sent once the coordinator stopped.
type closedMsg struct{}

const countdownRefresh = 250 * time.Millisecond

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForState waits for the next coordinator snapshot.
func waitForState(sub *multiplayer.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-sub.Updates():
			return stateMsg(st)
		case <-sub.Done():
			return closedMsg{}
		}
	}
}
