package config

import (
	"fmt"
	"time"
)

// Preset represents a named rule set for new games.
type Preset string

const (
	PresetClassic Preset = "classic"
	PresetDraws   Preset = "draws"
	PresetRapid   Preset = "rapid"
	PresetBlitz   Preset = "blitz"
)

var presets = map[Preset]GameConfig{
	PresetClassic: {},
	PresetDraws:   {AllowDraws: true},
	PresetRapid:   {TimePerTurn: 30 * time.Second, TimeCap: time.Minute},
	PresetBlitz:   {TimePerTurn: 10 * time.Second, TimeCap: 20 * time.Second},
}

// Presets lists the preset names in display order.
func Presets() []Preset {
	return []Preset{PresetClassic, PresetDraws, PresetRapid, PresetBlitz}
}

// PresetRules returns the game section of a preset.
func PresetRules(p Preset) (GameConfig, bool) {
	g, ok := presets[p]
	return g, ok
}

// ApplyPreset replaces the game section of cfg with a preset.
func ApplyPreset(cfg *ClientConfig, p Preset) error {
	g, ok := presets[p]
	if !ok {
		return fmt.Errorf("config: unknown preset %q", p)
	}
	cfg.Game = g
	return nil
}

// Describe returns a one-line summary of the rules.
func (g GameConfig) Describe() string {
	timer := "no turn timer"
	if g.TimePerTurn > 0 {
		timer = fmt.Sprintf("%s per turn", g.TimePerTurn)
		if g.TimeCap > g.TimePerTurn {
			timer += fmt.Sprintf(", banked up to %s", g.TimeCap)
		}
	}
	if g.AllowDraws {
		return timer + ", draws allowed"
	}
	return timer
}
