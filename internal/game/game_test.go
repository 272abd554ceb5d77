package game

import (
	"encoding/json"
	"testing"
)

// play replays 1-indexed columns and fails the test when a move is rejected.
func play(t *testing.T, rules Rules, moves ...int) *Game {
	t.Helper()
	g := New(rules)
	for i, m := range moves {
		if !g.EndTurn(m - 1) {
			t.Fatalf("move %d (column %d) rejected", i+1, m)
		}
	}
	return g
}

var (
	horizontalMoves = []int{4, 4, 5, 5, 6, 6, 7}
	verticalMoves   = []int{4, 5, 4, 5, 4, 5, 4}
	diagonal1Moves  = []int{4, 5, 5, 7, 6, 6, 6, 6, 7, 7, 7}
	diagonal2Moves  = []int{4, 3, 3, 1, 2, 2, 2, 1, 1, 5, 1}
	wonGameMoves    = []int{1, 2, 3, 4, 1, 2, 3, 4, 5, 5, 2, 2, 3, 4, 4, 2, 1, 3}
	filledMoves     = []int{
		1, 2, 3, 4, 5, 6, 7, 1, 2, 3, 4, 5, 6, 7, 1, 2, 3, 4, 5, 6, 7, 2, 3, 4, 5,
		6, 7, 2, 3, 4, 5, 6, 7, 7, 1, 1, 2, 3, 4, 5, 6, 1, 1, 2, 3, 4, 5, 6, 7,
	}
)

func TestNewGame(t *testing.T) {
	g := New(Rules{StartingPlayer: Player2})

	if g.State.Player != Player2 {
		t.Errorf("Player = %v, expected P2", g.State.Player)
	}
	if g.State.Turn != 0 {
		t.Errorf("Turn = %d, expected 0", g.State.Turn)
	}
	if g.Resolved() {
		t.Error("new game should not be resolved")
	}
	if g.Field.Pieces() != 0 {
		t.Errorf("Pieces() = %d, expected 0", g.Field.Pieces())
	}
}

func TestEndTurn(t *testing.T) {
	g := New(Rules{})

	if !g.EndTurn(3) {
		t.Fatal("EndTurn(3) = false, expected true")
	}
	if g.State.Turn != 1 {
		t.Errorf("Turn = %d, expected 1", g.State.Turn)
	}
	if g.State.Player != Player2 {
		t.Errorf("Player = %v, expected P2", g.State.Player)
	}
	if g.State.LastMove == nil || *g.State.LastMove != 3 {
		t.Errorf("LastMove = %v, expected 3", g.State.LastMove)
	}
	if g.Field[3][FieldSize-1] != CellPlayer1 {
		t.Errorf("piece did not fall to the bottom row")
	}

	g.EndTurn(3)
	if g.Field[3][FieldSize-2] != CellPlayer2 {
		t.Errorf("second piece should stack on the first")
	}
}

func TestEndTurnRejected(t *testing.T) {
	tests := []struct {
		name string
		col  int
	}{
		{"past last column", FieldSize},
		{"negative column", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Rules{})
			if g.EndTurn(tt.col) {
				t.Errorf("EndTurn(%d) = true, expected false", tt.col)
			}
			if g.State.Turn != 0 {
				t.Errorf("Turn = %d, expected 0", g.State.Turn)
			}
		})
	}
}

func TestEndTurnFullColumn(t *testing.T) {
	g := New(Rules{})
	for range FieldSize {
		g.EndTurn(3)
	}
	before := *g

	if g.EndTurn(3) {
		t.Error("EndTurn on a full column = true, expected false")
	}
	if g.Field != before.Field || g.State.Turn != before.State.Turn {
		t.Error("rejected move changed the game")
	}
	if !g.Field.ColumnFull(3) {
		t.Error("ColumnFull(3) = false, expected true")
	}
}

func TestEndTurnAfterResult(t *testing.T) {
	g := play(t, Rules{}, horizontalMoves...)
	field, turn := g.Field, g.State.Turn

	if g.EndTurn(2) {
		t.Error("EndTurn after result = true, expected false")
	}
	if g.Pass() {
		t.Error("Pass after result = true, expected false")
	}
	if g.Field != field || g.State.Turn != turn {
		t.Error("resolved game was mutated")
	}
}

func TestInProgress(t *testing.T) {
	g := play(t, Rules{}, 4, 5, 4, 4)
	if g.Resolved() {
		t.Errorf("Result = %+v, expected nil", g.State.Result)
	}
}

func TestWins(t *testing.T) {
	tests := []struct {
		name   string
		moves  []int
		turn   int
		winner Winner
		line   Line
	}{
		{"horizontal", horizontalMoves, 7, WinnerPlayer1, Line{Point{3, 6}, Point{6, 6}}},
		{"vertical", verticalMoves, 7, WinnerPlayer1, Line{Point{3, 3}, Point{3, 6}}},
		{"diagonal rising", diagonal1Moves, 11, WinnerPlayer1, Line{Point{6, 3}, Point{3, 6}}},
		{"diagonal falling", diagonal2Moves, 11, WinnerPlayer1, Line{Point{0, 3}, Point{3, 6}}},
		{"second player", wonGameMoves, 18, WinnerPlayer2, Line{Point{1, 2}, Point{4, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := play(t, Rules{}, tt.moves...)
			r := g.State.Result
			if r == nil {
				t.Fatal("Result = nil, expected a winner")
			}
			if g.State.Turn != tt.turn {
				t.Errorf("Turn = %d, expected %d", g.State.Turn, tt.turn)
			}
			if r.Winner != tt.winner {
				t.Errorf("Winner = %v, expected %v", r.Winner, tt.winner)
			}
			if len(r.Lines) != 1 || r.Lines[0] != tt.line {
				t.Errorf("Lines = %v, expected [%v]", r.Lines, tt.line)
			}
		})
	}
}

func TestFilledBoard(t *testing.T) {
	for _, allowDraws := range []bool{false, true} {
		g := play(t, Rules{AllowDraws: allowDraws}, filledMoves...)

		if g.State.Turn != FieldSize*FieldSize {
			t.Errorf("Turn = %d, expected %d", g.State.Turn, FieldSize*FieldSize)
		}
		if g.State.Result == nil || g.State.Result.Winner != WinnerDraw {
			t.Fatalf("allowDraws=%v: Result = %+v, expected draw", allowDraws, g.State.Result)
		}
		if len(g.State.Result.Lines) != 0 {
			t.Errorf("draw by full board should carry no lines, got %v", g.State.Result.Lines)
		}
	}
}

func TestDrawsDisallowed(t *testing.T) {
	g := play(t, Rules{AllowDraws: false}, horizontalMoves...)

	if g.EndTurn(6) {
		t.Error("EndTurn after a win = true, expected false")
	}
	if g.State.Result == nil || g.State.Result.Winner != WinnerPlayer1 {
		t.Errorf("Result = %+v, expected P1 win", g.State.Result)
	}
}

func TestDrawsAllowed(t *testing.T) {
	g := play(t, Rules{AllowDraws: true}, horizontalMoves...)
	if g.Resolved() {
		t.Fatal("line on an even turn should be held open")
	}

	if !g.EndTurn(6) {
		t.Fatal("answering move rejected")
	}
	r := g.State.Result
	if r == nil || r.Winner != WinnerDraw {
		t.Fatalf("Result = %+v, expected draw", r)
	}
	if len(r.Lines) != 2 {
		t.Errorf("len(Lines) = %d, expected 2", len(r.Lines))
	}
	if g.State.Turn != 8 {
		t.Errorf("Turn = %d, expected 8", g.State.Turn)
	}
}

func TestDrawsAllowedHeldLineWins(t *testing.T) {
	tests := []struct {
		name string
		move func(g *Game) bool
	}{
		{"opponent plays elsewhere", func(g *Game) bool { return g.EndTurn(0) }},
		{"opponent times out", func(g *Game) bool { return g.Pass() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := play(t, Rules{AllowDraws: true}, horizontalMoves...)
			if !tt.move(g) {
				t.Fatal("answering move rejected")
			}
			r := g.State.Result
			if r == nil || r.Winner != WinnerPlayer1 {
				t.Fatalf("Result = %+v, expected P1 win", r)
			}
			if g.State.Turn != 8 {
				t.Errorf("Turn = %d, expected 8", g.State.Turn)
			}
		})
	}
}

func TestPass(t *testing.T) {
	g := play(t, Rules{}, 4, 5)
	pieces := g.Field.Pieces()

	if !g.Pass() {
		t.Fatal("Pass() = false, expected true")
	}
	if g.State.Turn != 3 {
		t.Errorf("Turn = %d, expected 3", g.State.Turn)
	}
	if g.State.Player != Player2 {
		t.Errorf("Player = %v, expected P2", g.State.Player)
	}
	if g.State.LastMove != nil {
		t.Errorf("LastMove = %v, expected nil", *g.State.LastMove)
	}
	if g.Field.Pieces() != pieces {
		t.Error("Pass placed a piece")
	}
}

func TestStartingPlayerTwo(t *testing.T) {
	g := play(t, Rules{StartingPlayer: Player2}, horizontalMoves...)
	if g.State.Result == nil || g.State.Result.Winner != WinnerPlayer2 {
		t.Errorf("Result = %+v, expected P2 win", g.State.Result)
	}
}

func TestTurnCountsAcceptedCalls(t *testing.T) {
	g := New(Rules{})
	accepted := 0
	for _, col := range []int{0, 0, 9, 1, -3, 2} {
		if g.EndTurn(col) {
			accepted++
		}
		if g.Pass() {
			accepted++
		}
	}
	if g.State.Turn != accepted {
		t.Errorf("Turn = %d, expected %d", g.State.Turn, accepted)
	}
}

func TestResolveCollision(t *testing.T) {
	var f Field
	for x := range WinLength {
		f[x][6] = CellPlayer1
		f[x][5] = CellPlayer2
	}

	lines := Scan(&f)
	if len(lines) != 2 {
		t.Fatalf("Scan() found %d lines, expected 2", len(lines))
	}
	r := Resolve(&f, lines)
	if r == nil || r.Winner != WinnerDraw {
		t.Errorf("Resolve() = %+v, expected draw", r)
	}
	if Resolve(&f, nil) != nil {
		t.Error("Resolve(nil) should be nil")
	}
}

func TestScanLongRun(t *testing.T) {
	var f Field
	for x := range FieldSize {
		f[x][6] = CellPlayer2
	}

	lines := Scan(&f)
	want := Line{Point{0, 6}, Point{6, 6}}
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("Scan() = %v, expected [%v]", lines, want)
	}
}

func TestClone(t *testing.T) {
	g := play(t, Rules{}, horizontalMoves...)
	c := g.Clone()

	c.State.Result.Lines[0].From = Point{0, 0}
	*c.State.LastMove = 0
	c.Field[0][0] = CellPlayer2

	if g.State.Result.Lines[0].From != (Point{3, 6}) {
		t.Error("Clone shares result lines")
	}
	if *g.State.LastMove != 6 {
		t.Error("Clone shares last move")
	}
	if g.Field[0][0] != CellEmpty {
		t.Error("Clone shares the field")
	}
}

func TestGameJSON(t *testing.T) {
	g := play(t, Rules{}, horizontalMoves...)

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Game
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Field != g.Field {
		t.Error("field did not survive encoding")
	}
	if decoded.State.Result == nil || decoded.State.Result.Lines[0] != g.State.Result.Lines[0] {
		t.Errorf("result = %+v, expected %+v", decoded.State.Result, g.State.Result)
	}

	var raw struct {
		Field [][]*int `json:"field"`
		State struct {
			Result struct {
				Matches [][][]int `json:"matches"`
			} `json:"result"`
		} `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if raw.Field[0][0] != nil {
		t.Error("empty cell should encode as null")
	}
	if raw.Field[3][6] == nil || *raw.Field[3][6] != 0 {
		t.Error("player 1 piece should encode as 0")
	}
	if got := raw.State.Result.Matches[0]; got[0][0] != 3 || got[1][0] != 6 {
		t.Errorf("matches = %v, expected [[3 6] [6 6]]", got)
	}
}

func TestPlayerJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Player
		wantErr bool
	}{
		{"0", Player1, false},
		{"1", Player2, false},
		{"2", 0, true},
		{"255", 0, true},
		{"-1", 0, true},
		{`"1"`, 0, true},
	}
	for _, tt := range tests {
		var p Player
		err := json.Unmarshal([]byte(tt.input), &p)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && p != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, p, tt.want)
		}
	}
}

func TestLinePoints(t *testing.T) {
	tests := []struct {
		line Line
		want []Point
	}{
		{Line{Point{3, 6}, Point{6, 6}}, []Point{{3, 6}, {4, 6}, {5, 6}, {6, 6}}},
		{Line{Point{3, 3}, Point{3, 6}}, []Point{{3, 3}, {3, 4}, {3, 5}, {3, 6}}},
		{Line{Point{6, 3}, Point{3, 6}}, []Point{{6, 3}, {5, 4}, {4, 5}, {3, 6}}},
		{Line{Point{2, 2}, Point{2, 2}}, []Point{{2, 2}}},
	}
	for _, tt := range tests {
		got := tt.line.Points()
		if len(got) != len(tt.want) {
			t.Fatalf("Points(%v) = %v, want %v", tt.line, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Points(%v) = %v, want %v", tt.line, got, tt.want)
				break
			}
		}
	}
}
