// connect4 is a terminal connect-four client for hot-seat games and games
// over a relay server.
//
// Usage:
//
//	connect4 play             - Play on this terminal
//	connect4 host             - Open a lobby and invite an opponent
//	connect4 join <lobby>     - Join a lobby by ID or invite link
//	connect4 history          - Show finished games
//	connect4 presets          - List named rule sets
//	connect4 serve            - Start SSH server for hot-seat games
//
// Global flags:
//
//	--config <path>     - Client configuration file
//	--db <path>         - Database path (default: ~/.connect4/connect4.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-connect4/internal/app"
	"github.com/vovakirdan/tui-connect4/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string

	cfg config.ClientConfig
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "connect4",
	Short: "Connect Four in your terminal",
	Long: `Connect Four on a 7x7 board, on one terminal or against a friend
through a relay server.

Available commands:
  play     - Play on this terminal
  host     - Open a lobby and invite an opponent
  join     - Join a lobby
  history  - Show finished games
  presets  - List named rule sets
  serve    - Start SSH server for hot-seat games

Examples:
  connect4 play
  connect4 play --preset blitz
  connect4 host
  connect4 join http://localhost:3333/?lobby=abc123
  connect4 serve --ssh :2222`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to client config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		loaded.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		loaded.Log.Level = flagLogLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// terminalSize returns the size of the terminal, or 80x24.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// runBoard starts a client, calls connect once the coordinator runs and
// shows the board until the user quits.
func runBoard(keepRules bool, connect func(*app.App)) error {
	logFile, err := app.OpenLogFile(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	a := app.New(app.Options{
		Config:    cfg,
		LogOutput: logFile,
		KeepRules: keepRules,
	})
	defer a.Close()

	if connect != nil {
		connect(a)
	}

	width, height := terminalSize()
	return a.Run(width, height)
}
