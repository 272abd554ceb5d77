package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-connect4/internal/app"
	"github.com/vovakirdan/tui-connect4/internal/platform/tui"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Open a lobby and invite an opponent",
	Long: `Connect to the relay and open a lobby. Share the invite link shown
below the board. Players who open it get a code; pick the code your
friend tells you and choose their color.

Examples:
  connect4 host
  connect4 host --config ./lan.yaml`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBoard(false, func(a *app.App) {
			a.Coordinator.Connect("")
		})
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <lobby>",
	Short: "Join a lobby by ID or invite link",
	Long: `Connect to the relay and join an open lobby. Tell the host the code
shown below the board.

Examples:
  connect4 join abc123
  connect4 join "http://localhost:3333/?lobby=abc123"`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		lobbyID := tui.ParseLobbyID(args[0])
		return runBoard(false, func(a *app.App) {
			a.Coordinator.Connect(lobbyID)
		})
	},
}
