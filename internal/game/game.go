package game

// Winner is the outcome of a resolved game.
type Winner uint8

const (
	WinnerPlayer1 Winner = Winner(Player1)
	WinnerPlayer2 Winner = Winner(Player2)
	WinnerDraw    Winner = 2
)

func (w Winner) String() string {
	switch w {
	case WinnerPlayer1:
		return "P1"
	case WinnerPlayer2:
		return "P2"
	case WinnerDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Result is set once a game is over. A draw by a full board has no lines.
type Result struct {
	Winner Winner `json:"winner"`
	Lines  []Line `json:"matches"`
}

// Resolve turns a set of winning lines into a result. Lines owned by both
// players make a draw. It returns nil when lines is empty.
func Resolve(f *Field, lines []Line) *Result {
	if len(lines) == 0 {
		return nil
	}

	var (
		owner Player
		found bool
	)
	for _, l := range lines {
		p, ok := f.At(l.From).Owner()
		if !ok {
			continue
		}
		if found && p != owner {
			return &Result{Winner: WinnerDraw, Lines: lines}
		}
		owner, found = p, true
	}
	if !found {
		return nil
	}
	return &Result{Winner: Winner(owner), Lines: lines}
}

// Rules fix the parameters of a single game.
type Rules struct {
	StartingPlayer Player `json:"startingPlayer"`
	AllowDraws     bool   `json:"allowDraws"`
}

// State is the mutable part of a game besides the board.
type State struct {
	Player   Player  `json:"player"`
	Turn     int     `json:"turn"`
	Result   *Result `json:"result"`
	LastMove *int    `json:"lastMove,omitempty"`
}

func (s *State) advance(col *int) {
	s.Player = s.Player.Other()
	s.Turn++
	s.LastMove = col
}

// Game is a single match from an empty board to its result.
type Game struct {
	Field Field `json:"field"`
	State State `json:"state"`
	Rules Rules `json:"rules"`
}

// New creates an empty game.
func New(rules Rules) *Game {
	return &Game{
		State: State{Player: rules.StartingPlayer},
		Rules: rules,
	}
}

// Resolved reports whether the game has a result.
func (g *Game) Resolved() bool {
	return g.State.Result != nil
}

// CanDrop reports whether a piece may currently be dropped into col.
func (g *Game) CanDrop(col int) bool {
	return !g.Resolved() && col >= 0 && col < FieldSize && !g.Field.ColumnFull(col)
}

// EndTurn drops a piece of the current player into col and passes the
// turn. It returns false and leaves the game untouched when the game is
// over, col is outside the board or the column is full.
func (g *Game) EndTurn(col int) bool {
	if !g.CanDrop(col) {
		return false
	}

	y := g.Field.dropRow(col)
	g.Field[col][y] = CellOf(g.State.Player)
	g.updateResult(&Point{X: col, Y: y})
	g.State.advance(&col)
	return true
}

// Pass ends the turn without placing a piece, as when the turn timer
// runs out. Pending lines are still evaluated.
func (g *Game) Pass() bool {
	if g.Resolved() {
		return false
	}
	g.updateResult(nil)
	g.State.advance(nil)
	return true
}

// updateResult runs the full scan only when the incremental checks
// suspect a line. With draws allowed, a line made on an even turn is held
// until the opponent has answered; the answer checks both its own piece
// and the previous mover's last piece so simultaneous lines end in a draw.
func (g *Game) updateResult(placed *Point) {
	mover := g.State.Player
	suspect := placed != nil && g.Field.winningAt(*placed, mover)

	if g.Rules.AllowDraws {
		if g.State.Turn%2 == 0 {
			suspect = false
		} else if g.lastMoveWinning() {
			suspect = true
		}
	}

	if suspect {
		if r := Resolve(&g.Field, Scan(&g.Field)); r != nil {
			g.State.Result = r
			return
		}
	}

	if g.Field.Full() {
		r := Resolve(&g.Field, Scan(&g.Field))
		if r == nil {
			r = &Result{Winner: WinnerDraw, Lines: []Line{}}
		}
		g.State.Result = r
	}
}

// lastMoveWinning reports whether the previous mover's last piece is part
// of a winning run. The piece is the topmost one of theirs in the column
// they played.
func (g *Game) lastMoveWinning() bool {
	if g.State.LastMove == nil {
		return false
	}
	col := *g.State.LastMove
	if col < 0 || col >= FieldSize {
		return false
	}
	other := g.State.Player.Other()
	c := CellOf(other)
	for y := range FieldSize {
		if g.Field[col][y] == c {
			return g.Field.winningAt(Point{X: col, Y: y}, other)
		}
	}
	return false
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	c := *g
	if g.State.Result != nil {
		r := *g.State.Result
		r.Lines = append([]Line(nil), g.State.Result.Lines...)
		c.State.Result = &r
	}
	if g.State.LastMove != nil {
		m := *g.State.LastMove
		c.State.LastMove = &m
	}
	return &c
}
