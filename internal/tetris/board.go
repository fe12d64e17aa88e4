// Package tetris implements a deterministic falling-block engine.
//
// The engine owns no clock and performs no I/O. A driver feeds it elapsed
// time through Session.Tick and logical commands through
// Session.ApplyCommand, and observes it through events and snapshots.
package tetris

import "fmt"

// Board dimensions. Row 0 is the top (spawn) row.
const (
	BoardRows = 20
	BoardCols = 10
)

// Cell is the content of a single board cell.
type Cell uint8

const (
	CellEmpty   Cell = 0
	CellGarbage Cell = 8
)

// IsEmpty reports whether the cell holds nothing.
func (c Cell) IsEmpty() bool {
	return c == CellEmpty
}

// PieceType returns the piece type a cell was stamped with, or PieceNone for
// empty and garbage cells.
func (c Cell) PieceType() PieceType {
	if c >= 1 && c <= 7 {
		return PieceType(c)
	}
	return PieceNone
}

// Board is the grid of settled cells.
type Board [BoardRows][BoardCols]Cell

// NewBoardFromRows builds a board from a slice of rows.
// It panics when the dimensions do not match BoardRows x BoardCols.
func NewBoardFromRows(rows [][]Cell) Board {
	if len(rows) != BoardRows {
		panic(fmt.Sprintf("tetris: board has %d rows, want %d", len(rows), BoardRows))
	}
	var b Board
	for y, row := range rows {
		if len(row) != BoardCols {
			panic(fmt.Sprintf("tetris: board row %d has %d cols, want %d", y, len(row), BoardCols))
		}
		copy(b[y][:], row)
	}
	return b
}

// Rows returns the board as a freshly allocated slice of rows.
func (b Board) Rows() [][]Cell {
	rows := make([][]Cell, BoardRows)
	for y := range BoardRows {
		rows[y] = append([]Cell(nil), b[y][:]...)
	}
	return rows
}

// InBounds reports whether (x, y) lies on the visible board.
func (b Board) InBounds(x, y int) bool {
	return x >= 0 && x < BoardCols && y >= 0 && y < BoardRows
}

// Occupied reports whether (x, y) is on the board and non-empty.
func (b Board) Occupied(x, y int) bool {
	return b.InBounds(x, y) && !b[y][x].IsEmpty()
}

// IsEmpty reports whether every cell is empty.
func (b Board) IsEmpty() bool {
	for y := range BoardRows {
		if !rowEmpty(b[y]) {
			return false
		}
	}
	return true
}

// Height returns the number of rows from the highest settled cell down to
// the floor.
func (b Board) Height() int {
	for y := range BoardRows {
		if !rowEmpty(b[y]) {
			return BoardRows - y
		}
	}
	return 0
}

func rowEmpty(row [BoardCols]Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func rowFull(row [BoardCols]Cell) bool {
	for _, c := range row {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}

// Collides reports whether piece p, shifted by (dx, dy), overlaps a wall, the
// floor, or a settled cell. Cells above the board only collide with the side
// walls. It is a pure query.
func Collides(b Board, p Piece, dx, dy int) bool {
	for _, c := range p.Cells() {
		x, y := c.X+dx, c.Y+dy
		if x < 0 || x >= BoardCols || y >= BoardRows {
			return true
		}
		if y >= 0 && !b[y][x].IsEmpty() {
			return true
		}
	}
	return false
}
