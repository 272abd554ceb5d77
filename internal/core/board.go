package core

// BoardLayout places a grid of columns x rows slots on the screen. Every
// slot is CellW characters wide and one row high, inside a one character
// frame.
type BoardLayout struct {
	Cols, Rows int
	CellW      int
	Origin     Rect // frame of the board, including the border
}

// NewBoardLayout centers a board of cols x rows slots in a screen of
// width x height, leaving top rows free for the header.
func NewBoardLayout(cols, rows, width, height, top int) BoardLayout {
	const cellW = 4
	w := cols*cellW + 2
	h := rows + 2
	x := max((width-w)/2, 0)
	y := top + max((height-top-h)/2, 0)
	return BoardLayout{
		Cols:   cols,
		Rows:   rows,
		CellW:  cellW,
		Origin: NewRect(x, y, w, h),
	}
}

// Slot returns the screen area of the slot in col, row.
func (b BoardLayout) Slot(col, row int) Rect {
	return NewRect(b.Origin.X+1+col*b.CellW, b.Origin.Y+1+row, b.CellW, 1)
}

// ColumnAt returns the column under the screen point (x, y). Points above
// the board select the column below them.
func (b BoardLayout) ColumnAt(x, y int) (int, bool) {
	inner := NewRect(b.Origin.X+1, 0, b.Cols*b.CellW, b.Origin.Bottom()-1)
	if !inner.Contains(x, y) {
		return 0, false
	}
	return (x - inner.X) / b.CellW, true
}

// CursorPos returns where the drop marker of col is drawn, just above the frame.
func (b BoardLayout) CursorPos(col int) (int, int) {
	slot := b.Slot(col, 0)
	cx, _ := slot.Center()
	return cx - 1, b.Origin.Y - 1
}
