package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 5)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"center", 12, 12, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right inside", 14, 14, true},
		{"right edge (exclusive)", 15, 12, false},
		{"bottom edge (exclusive)", 12, 15, false},
		{"left of rect", 9, 12, false},
		{"above rect", 12, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}

	cx, cy := r.Center()
	if cx != 15 || cy != 17 {
		t.Errorf("Center() = (%d, %d), expected (15, 17)", cx, cy)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.val, tt.lo, tt.hi, got, tt.expected)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		val, n, expected int
	}{
		{3, 7, 3},
		{7, 7, 0},
		{-1, 7, 6},
		{-8, 7, 6},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := Wrap(tt.val, tt.n); got != tt.expected {
			t.Errorf("Wrap(%d, %d) = %d, expected %d", tt.val, tt.n, got, tt.expected)
		}
	}
}

func TestBoardLayout(t *testing.T) {
	// 7 slots of 4 plus the frame is 30 wide, 7 rows plus the frame is 9 high
	b := NewBoardLayout(7, 7, 80, 24, 3)

	if b.Origin != NewRect(25, 9, 30, 9) {
		t.Fatalf("Origin = %+v", b.Origin)
	}
	if got := b.Slot(0, 0); got != NewRect(26, 10, 4, 1) {
		t.Errorf("Slot(0, 0) = %+v", got)
	}
	if got := b.Slot(6, 6); got != NewRect(50, 16, 4, 1) {
		t.Errorf("Slot(6, 6) = %+v", got)
	}

	x, y := b.CursorPos(2)
	if x != 35 || y != 8 {
		t.Errorf("CursorPos(2) = (%d, %d), expected (35, 8)", x, y)
	}

	tests := []struct {
		name   string
		x, y   int
		col    int
		inside bool
	}{
		{"first slot", 26, 10, 0, true},
		{"last slot", 53, 16, 6, true},
		{"above the board", 38, 2, 3, true},
		{"left frame", 25, 10, 0, false},
		{"right frame", 54, 10, 0, false},
		{"bottom frame", 30, 17, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := b.ColumnAt(tt.x, tt.y)
			if ok != tt.inside || (ok && col != tt.col) {
				t.Errorf("ColumnAt(%d, %d) = (%d, %v), expected (%d, %v)", tt.x, tt.y, col, ok, tt.col, tt.inside)
			}
		})
	}
}

func TestBoardLayoutSmallScreen(t *testing.T) {
	b := NewBoardLayout(7, 7, 10, 5, 2)
	if b.Origin.X != 0 || b.Origin.Y != 2 {
		t.Errorf("Origin = %+v, expected board pinned to (0, 2)", b.Origin)
	}
}
