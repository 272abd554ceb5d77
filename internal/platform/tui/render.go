package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-connect4/internal/core"
	"github.com/vovakirdan/tui-connect4/internal/game"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	core.ColorBrightWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
}

// playerColors are the piece colors of player 1 and player 2.
var playerColors = [2]core.Color{core.ColorRed, core.ColorYellow}

var playerNames = [2]string{"Red", "Yellow"}

func playerName(p game.Player) string {
	return playerNames[p]
}

func playerStyle(p game.Player) lipgloss.Style {
	return colorStyles[playerColors[p]].Bold(true)
}

// drawBoard draws the field into s using layout. cursor is the column of
// the drop marker, or -1 to hide it.
func drawBoard(s *core.Screen, layout core.BoardLayout, g *game.Game, cursor int) {
	s.Clear()
	s.DrawBox(layout.Origin, core.ColorBlue)

	winning := make(map[game.Point]bool)
	if g.State.Result != nil {
		for _, l := range g.State.Result.Lines {
			for _, p := range l.Points() {
				winning[p] = true
			}
		}
	}

	for col := range game.FieldSize {
		for row := range game.FieldSize {
			slot := layout.Slot(col, row)
			p := game.Point{X: col, Y: row}
			owner, ok := g.Field.At(p).Owner()
			if !ok {
				s.DrawTextColored(slot.X+1, slot.Y, "··", core.ColorGray)
				continue
			}
			color, piece := playerColors[owner], "●●"
			if winning[p] {
				color, piece = color.Highlight(), "◆◆"
			}
			s.DrawTextColored(slot.X+1, slot.Y, piece, color)
		}
	}

	if cursor >= 0 && !g.Resolved() {
		x, y := layout.CursorPos(cursor)
		s.DrawTextColored(x, y, "▼▼", playerColors[g.State.Player])
	}
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// centerText pads text so it is centered in width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
