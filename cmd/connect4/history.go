package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/platform/tui"
	"github.com/vovakirdan/tui-connect4/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished games",
	Long: `Browse the games finished on this machine, newest first.

Examples:
  connect4 history
  connect4 history --plain --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print the history instead of opening the browser")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of games to print with --plain")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if !flagPlain {
		width, height := terminalSize()
		return tui.RunHistory(store, width, height)
	}

	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No games recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Play 'connect4 play' to record the first one!")
		return nil
	}

	fmt.Fprintf(out, "  %-16s  %-6s  %-5s  %-6s  %s\n", "Date", "Mode", "Round", "Winner", "Turns")
	fmt.Fprintf(out, "  %-16s  %-6s  %-5s  %-6s  %s\n", "----", "----", "-----", "------", "-----")
	for _, m := range matches {
		fmt.Fprintf(out, "  %-16s  %-6s  %-5d  %-6s  %d\n",
			m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Mode, m.Round, m.Winner, m.Turns)
	}

	stats, err := store.MatchStats()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Games: %d  P1: %d  P2: %d  Draws: %d\n",
		stats.Games, stats.Wins[game.Player1], stats.Wins[game.Player2], stats.Draws)
	return nil
}
