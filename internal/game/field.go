// Package game implements the four-in-a-row rule engine.
// It has no dependencies on transport, timers or the terminal so that the
// same state machine drives local games and mirrors remote ones.
package game

import (
	"encoding/json"
	"fmt"
)

const (
	// FieldSize is the side length of the square board.
	FieldSize = 7
	// WinLength is the minimum run of pieces that wins.
	WinLength = 4
)

// Player identifies one of the two sides.
type Player uint8

const (
	Player1 Player = iota
	Player2
)

// Other returns the opponent.
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "P1"
	case Player2:
		return "P2"
	default:
		return "P?"
	}
}

// Valid reports whether p is Player1 or Player2.
func (p Player) Valid() bool {
	return p <= Player2
}

// UnmarshalJSON rejects numbers that are not a player.
func (p *Player) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !Player(v).Valid() {
		return fmt.Errorf("game: invalid player %d", v)
	}
	*p = Player(v)
	return nil
}

// Cell is the content of a board slot.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellPlayer1
	CellPlayer2
)

// CellOf returns the cell value holding a piece of p.
func CellOf(p Player) Cell {
	return Cell(p) + 1
}

// Owner reports which player occupies the cell.
func (c Cell) Owner() (Player, bool) {
	if c == CellEmpty {
		return 0, false
	}
	return Player(c - 1), true
}

// MarshalJSON encodes an empty cell as null and an occupied cell as the
// owner's player number.
func (c Cell) MarshalJSON() ([]byte, error) {
	p, ok := c.Owner()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(uint8(p))
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var p *uint8
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch {
	case p == nil:
		*c = CellEmpty
	case *p <= uint8(Player2):
		*c = CellOf(Player(*p))
	default:
		return fmt.Errorf("game: invalid cell value %d", *p)
	}
	return nil
}

// Point addresses a cell as (column, row). Row 0 is the top of the board.
type Point struct {
	X, Y int
}

func (p Point) add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) sub(d Point) Point {
	return Point{X: p.X - d.X, Y: p.Y - d.Y}
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Line is a winning run reported by its two endpoints.
type Line struct {
	From, To Point
}

// Points lists every cell of the line from From to To.
func (l Line) Points() []Point {
	step := Point{X: sign(l.To.X - l.From.X), Y: sign(l.To.Y - l.From.Y)}
	pts := []Point{l.From}
	for p := l.From; p != l.To; {
		p = p.add(step)
		pts = append(pts, p)
	}
	return pts
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// MarshalJSON encodes the line as [[x1, y1], [x2, y2]].
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Point{l.From, l.To})
}

// UnmarshalJSON decodes a line from [[x1, y1], [x2, y2]].
func (l *Line) UnmarshalJSON(data []byte) error {
	var pts [2]Point
	if err := json.Unmarshal(data, &pts); err != nil {
		return err
	}
	l.From, l.To = pts[0], pts[1]
	return nil
}

// Field is the board, indexed [column][row].
type Field [FieldSize][FieldSize]Cell

func inBounds(p Point) bool {
	return p.X >= 0 && p.X < FieldSize && p.Y >= 0 && p.Y < FieldSize
}

// At returns the cell at p, or CellEmpty outside the board.
func (f *Field) At(p Point) Cell {
	if !inBounds(p) {
		return CellEmpty
	}
	return f[p.X][p.Y]
}

// dropRow returns the row a piece dropped into col would land on,
// or -1 when the column is full.
func (f *Field) dropRow(col int) int {
	for y := FieldSize - 1; y >= 0; y-- {
		if f[col][y] == CellEmpty {
			return y
		}
	}
	return -1
}

// ColumnFull reports whether col has no empty slot left.
func (f *Field) ColumnFull(col int) bool {
	return f[col][0] != CellEmpty
}

// Full reports whether every slot is occupied.
func (f *Field) Full() bool {
	for x := range FieldSize {
		if !f.ColumnFull(x) {
			return false
		}
	}
	return true
}

// Pieces counts the occupied slots.
func (f *Field) Pieces() int {
	n := 0
	for x := range FieldSize {
		for y := range FieldSize {
			if f[x][y] != CellEmpty {
				n++
			}
		}
	}
	return n
}

// directions are the four line families: horizontal, vertical and both
// diagonals. Each is walked in the positive row direction where it has one.
var directions = [...]Point{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// runLength counts the pieces equal to c on the line through p along d.
func (f *Field) runLength(p, d Point, c Cell) int {
	n := 1
	for q := p.add(d); inBounds(q) && f.At(q) == c; q = q.add(d) {
		n++
	}
	for q := p.sub(d); inBounds(q) && f.At(q) == c; q = q.sub(d) {
		n++
	}
	return n
}

// winningAt reports whether the piece of player at p is part of a run of
// at least WinLength pieces.
func (f *Field) winningAt(p Point, player Player) bool {
	c := CellOf(player)
	if f.At(p) != c {
		return false
	}
	for _, d := range directions {
		if f.runLength(p, d, c) >= WinLength {
			return true
		}
	}
	return false
}

// Scan collects every maximal run of WinLength or more identical pieces on
// the board, across all four line families.
func Scan(f *Field) []Line {
	var lines []Line
	for _, d := range directions {
		for x := range FieldSize {
			for y := range FieldSize {
				start := Point{X: x, Y: y}
				// only walk from cells that begin a line
				if inBounds(start.sub(d)) {
					continue
				}
				lines = f.scanLine(lines, start, d)
			}
		}
	}
	return lines
}

func (f *Field) scanLine(lines []Line, p, d Point) []Line {
	var (
		start  Point
		last   Cell
		length int
	)
	for ; inBounds(p); p = p.add(d) {
		c := f.At(p)
		if c != CellEmpty && c == last {
			length++
			continue
		}
		if length >= WinLength {
			lines = append(lines, Line{From: start, To: p.sub(d)})
		}
		start, last, length = p, c, 0
		if c != CellEmpty {
			length = 1
		}
	}
	if length >= WinLength {
		lines = append(lines, Line{From: start, To: p.sub(d)})
	}
	return lines
}
