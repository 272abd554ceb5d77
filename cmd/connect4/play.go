package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-connect4/internal/config"
)

var flagPreset string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play on this terminal",
	Long: `Start a hot-seat game. Red and Yellow take turns on one keyboard.

Controls:
  ←/→ or A/D     - Move the drop marker
  Space/Enter    - Drop a piece (or press 1-7)
  R              - Restart
  P              - Restart with the next rule preset
  H / J          - Host or join an online game
  T              - Match history
  ?              - More keys
  Q/Ctrl+C       - Quit

The rules of the last game are remembered. Use --preset to start with
named rules instead.

Examples:
  connect4 play
  connect4 play --preset rapid`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Rule preset: classic, draws, rapid, blitz")
}

func runPlay(_ *cobra.Command, _ []string) error {
	if flagPreset != "" {
		if err := config.ApplyPreset(&cfg, config.Preset(flagPreset)); err != nil {
			return err
		}
	}
	return runBoard(flagPreset != "", nil)
}
