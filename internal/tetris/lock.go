package tetris

import "math/rand"

// Stamp writes the piece's on-board cells into b and returns the result.
// Cells above the top row are discarded.
func Stamp(b Board, p Piece) Board {
	tag := p.Type.Cell()
	for _, c := range p.Cells() {
		if c.Y >= 0 && c.Y < BoardRows && c.X >= 0 && c.X < BoardCols {
			b[c.Y][c.X] = tag
		}
	}
	return b
}

// ClearLines removes every complete row, shifts the remaining rows down and
// fills the top with empty rows. It returns the new board and the number of
// rows removed.
func ClearLines(b Board) (Board, int) {
	var out Board
	write := BoardRows - 1
	cleared := 0
	for y := BoardRows - 1; y >= 0; y-- {
		if rowFull(b[y]) {
			cleared++
			continue
		}
		out[write] = b[y]
		write--
	}
	return out, cleared
}

// Lock stamps p into b and clears completed rows.
func Lock(b Board, p Piece) (Board, int) {
	return ClearLines(Stamp(b, p))
}

// GarbageRow builds one garbage row with the given hole columns.
func GarbageRow(holes ...int) [BoardCols]Cell {
	var row [BoardCols]Cell
	for x := range row {
		row[x] = CellGarbage
	}
	for _, h := range holes {
		if h >= 0 && h < BoardCols {
			row[h] = CellEmpty
		}
	}
	return row
}

// InsertGarbage drops count rows off the top of b and pushes count garbage
// rows in from the bottom. Each row receives holesPerRow distinct holes picked
// independently with rng. Out-of-range arguments are clamped.
func InsertGarbage(b Board, count, holesPerRow int, rng *rand.Rand) Board {
	count = clamp(count, 0, BoardRows)
	holesPerRow = clamp(holesPerRow, 1, BoardCols-1)
	if count == 0 {
		return b
	}

	var out Board
	copy(out[:], b[count:])
	for y := BoardRows - count; y < BoardRows; y++ {
		out[y] = GarbageRow(rng.Perm(BoardCols)[:holesPerRow]...)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
