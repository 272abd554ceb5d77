package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-connect4/internal/config"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List named rule sets",
	Long: `List the rule presets accepted by 'connect4 play --preset'.

Example:
  connect4 presets`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Rule presets:")
		fmt.Fprintln(out)
		for _, p := range config.Presets() {
			rules, _ := config.PresetRules(p)
			fmt.Fprintf(out, "  %-8s  %s\n", p, rules.Describe())
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Current rules: %s\n", cfg.Game.Describe())
	},
}
