package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-connect4/internal/core"
	"github.com/vovakirdan/tui-connect4/internal/game"
)

func testLayout() (*core.Screen, core.BoardLayout) {
	const w, h = 40, game.FieldSize + 3
	return core.NewScreen(w, h), core.NewBoardLayout(game.FieldSize, game.FieldSize, w, h, 1)
}

func play(t *testing.T, g *game.Game, cols ...int) {
	t.Helper()
	for _, c := range cols {
		if !g.EndTurn(c) {
			t.Fatalf("EndTurn(%d) refused", c)
		}
	}
}

func TestDrawBoardPieces(t *testing.T) {
	s, layout := testLayout()
	g := game.New(game.Rules{StartingPlayer: game.Player1})
	play(t, g, 0, 1)

	drawBoard(s, layout, g, 3)

	// Board frame at (5,1), slots are 4 wide with the piece one cell in.
	if got := s.GetCell(5, 1); got.Rune != '┌' || got.Color != core.ColorBlue {
		t.Errorf("frame corner = %+v", got)
	}
	if got := s.GetCell(7, 8); got.Rune != '●' || got.Color != core.ColorRed {
		t.Errorf("player 1 piece = %+v, want red ●", got)
	}
	if got := s.GetCell(11, 8); got.Rune != '●' || got.Color != core.ColorYellow {
		t.Errorf("player 2 piece = %+v, want yellow ●", got)
	}
	if got := s.GetCell(7, 7); got.Rune != '·' {
		t.Errorf("empty slot = %q, want ·", got.Rune)
	}

	// Player 1 to move, marker above column 3.
	if got := s.GetCell(19, 0); got.Rune != '▼' || got.Color != core.ColorRed {
		t.Errorf("cursor = %+v, want red ▼", got)
	}
}

func TestDrawBoardHidesCursor(t *testing.T) {
	s, layout := testLayout()
	g := game.New(game.Rules{StartingPlayer: game.Player1})

	drawBoard(s, layout, g, -1)

	if row := strings.TrimSpace(s.Row(0)); row != "" {
		t.Errorf("cursor row = %q, want empty", row)
	}
}

func TestDrawBoardHighlightsWin(t *testing.T) {
	s, layout := testLayout()
	g := game.New(game.Rules{StartingPlayer: game.Player1})
	play(t, g, 0, 1, 0, 1, 0, 1, 0)
	if !g.Resolved() {
		t.Fatal("expected a win")
	}

	drawBoard(s, layout, g, 3)

	for y := 5; y <= 8; y++ {
		if got := s.GetCell(7, y); got.Rune != '◆' || got.Color != core.ColorBrightRed {
			t.Errorf("winning cell y=%d = %+v, want bright red ◆", y, got)
		}
	}
	if got := s.GetCell(11, 8); got.Rune != '●' {
		t.Errorf("losing piece = %q, want ●", got.Rune)
	}
	if row := strings.TrimSpace(s.Row(0)); row != "" {
		t.Errorf("no cursor after the game ends, got %q", row)
	}
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(4, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawText(2, 0, "cd")
	s.DrawText(0, 1, "efgh")

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderScreen has %d lines, want 2", len(lines))
	}
	for _, want := range []string{"ab", "cd", "efgh"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderScreen output missing %q", want)
		}
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q, want %q", got, "  ab")
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText should not cut text, got %q", got)
	}
}
