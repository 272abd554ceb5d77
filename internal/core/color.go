package core

// Color represents a foreground color for a screen cell.
// The TUI maps each to an ANSI 256-color code.
type Color uint8

// Predefined colors for board elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorYellow
	ColorBlue
	ColorGreen
	ColorGray
	ColorBrightRed
	ColorBrightYellow
	ColorBrightWhite
)

// Highlight returns the brighter variant used for winning lines.
func (c Color) Highlight() Color {
	switch c {
	case ColorRed:
		return ColorBrightRed
	case ColorYellow:
		return ColorBrightYellow
	default:
		return ColorBrightWhite
	}
}
