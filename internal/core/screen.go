package core

import "strings"

// Cell is one character of the canvas with its foreground color.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' '}

// Screen is a fixed-size grid of cells that views draw into before it is
// turned into a string. Writes outside the grid are dropped.
type Screen struct {
	w, h  int
	cells []Cell // row-major, len w*h
}

func NewScreen(width, height int) *Screen {
	s := &Screen{w: width, h: height, cells: make([]Cell, width*height)}
	s.Clear()
	return s
}

func (s *Screen) Width() int  { return s.w }
func (s *Screen) Height() int { return s.h }

func (s *Screen) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.w && y < s.h
}

// Resize changes the grid size. Content in the overlapping area survives.
func (s *Screen) Resize(width, height int) {
	if width == s.w && height == s.h {
		return
	}
	old := *s
	*s = Screen{w: width, h: height, cells: make([]Cell, width*height)}
	s.Clear()
	cols := min(old.w, width)
	for y := range min(old.h, height) {
		copy(s.cells[y*width:y*width+cols], old.cells[y*old.w:])
	}
}

// Clear blanks every cell.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = blank
	}
}

func (s *Screen) SetCell(x, y int, c Cell) {
	if s.in(x, y) {
		s.cells[y*s.w+x] = c
	}
}

// Set writes an uncolored rune.
func (s *Screen) Set(x, y int, r rune) {
	s.SetCell(x, y, Cell{Rune: r})
}

// GetCell returns the cell at (x, y), blank outside the grid.
func (s *Screen) GetCell(x, y int) Cell {
	if !s.in(x, y) {
		return blank
	}
	return s.cells[y*s.w+x]
}

func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// DrawText writes text left to right from (x, y), one rune per cell.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	for _, r := range text {
		s.SetCell(x, y, Cell{Rune: r, Color: c})
		x++
	}
}

// DrawTextCentered writes text on row y, centered within r.
func (s *Screen) DrawTextCentered(r Rect, y int, text string, c Color) {
	s.DrawText(r.X+(r.W-len([]rune(text)))/2, y, text, c)
}

// DrawRect fills r with fill.
func (s *Screen) DrawRect(r Rect, fill Cell) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			s.SetCell(x, y, fill)
		}
	}
}

// DrawBox outlines r with single-line box characters. Rects smaller than
// 2x2 are ignored.
func (s *Screen) DrawBox(r Rect, c Color) {
	if r.W < 2 || r.H < 2 {
		return
	}
	left, right, top, bottom := r.X, r.Right()-1, r.Y, r.Bottom()-1
	for x := left + 1; x < right; x++ {
		s.SetCell(x, top, Cell{'─', c})
		s.SetCell(x, bottom, Cell{'─', c})
	}
	for y := top + 1; y < bottom; y++ {
		s.SetCell(left, y, Cell{'│', c})
		s.SetCell(right, y, Cell{'│', c})
	}
	s.SetCell(left, top, Cell{'┌', c})
	s.SetCell(right, top, Cell{'┐', c})
	s.SetCell(left, bottom, Cell{'└', c})
	s.SetCell(right, bottom, Cell{'┘', c})
}

// Row returns row y as plain text, all spaces outside the grid.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.h {
		return strings.Repeat(" ", s.w)
	}
	var b strings.Builder
	for _, c := range s.cells[y*s.w : (y+1)*s.w] {
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// String returns the grid as plain text, rows separated by newlines.
func (s *Screen) String() string {
	rows := make([]string, s.h)
	for y := range rows {
		rows[y] = s.Row(y)
	}
	return strings.Join(rows, "\n")
}
