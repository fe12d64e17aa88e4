package tetris

import "fmt"

// PieceType identifies one of the seven tetrominoes.
type PieceType uint8

const (
	PieceNone PieceType = iota
	PieceI
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
)

// AllPieces lists the seven piece types in bag fill order.
var AllPieces = [7]PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

var pieceNames = [...]string{"", "I", "O", "T", "S", "Z", "J", "L"}

// String returns the single-letter name of the piece.
func (t PieceType) String() string {
	if int(t) < len(pieceNames) {
		return pieceNames[t]
	}
	return "?"
}

// Valid reports whether t is one of the seven playable types.
func (t PieceType) Valid() bool {
	return t >= PieceI && t <= PieceL
}

// Cell returns the board tag for the piece type.
func (t PieceType) Cell() Cell {
	return Cell(t)
}

// ParsePieceType converts a single-letter name back to a PieceType.
func ParsePieceType(s string) (PieceType, bool) {
	for i := PieceI; i <= PieceL; i++ {
		if pieceNames[i] == s {
			return i, true
		}
	}
	return PieceNone, false
}

// MarshalText encodes the type as its letter so it can key JSON objects.
// PieceNone encodes as the empty string.
func (t PieceType) MarshalText() ([]byte, error) {
	if t != PieceNone && !t.Valid() {
		return nil, fmt.Errorf("tetris: invalid piece type %d", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a piece letter.
func (t *PieceType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = PieceNone
		return nil
	}
	v, ok := ParsePieceType(string(b))
	if !ok {
		return fmt.Errorf("tetris: unknown piece type %q", b)
	}
	*t = v
	return nil
}

// Point is a board coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// shape is one rotation state of a piece: its occupied cells relative to the
// top-left anchor, plus the bounding box.
type shape struct {
	cells  []Point
	width  int
	height int
	pivot  Point // T only: the cell with three orthogonal neighbours
}

var baseShapes = map[PieceType][][]uint8{
	PieceI: {{1, 1, 1, 1}},
	PieceO: {{1, 1}, {1, 1}},
	PieceT: {{0, 1, 0}, {1, 1, 1}},
	PieceS: {{0, 1, 1}, {1, 1, 0}},
	PieceZ: {{1, 1, 0}, {0, 1, 1}},
	PieceJ: {{1, 0, 0}, {1, 1, 1}},
	PieceL: {{0, 0, 1}, {1, 1, 1}},
}

// shapes is indexed by [type][rotation] and never mutated after init.
var shapes [8][4]shape

func init() {
	for t, m := range baseShapes {
		for r := range 4 {
			shapes[t][r] = buildShape(m)
			m = rotateMatrixCW(m)
		}
	}
}

func rotateMatrixCW(m [][]uint8) [][]uint8 {
	h, w := len(m), len(m[0])
	out := make([][]uint8, w)
	for y := range w {
		out[y] = make([]uint8, h)
		for x := range h {
			out[y][x] = m[h-1-x][y]
		}
	}
	return out
}

func buildShape(m [][]uint8) shape {
	s := shape{height: len(m), width: len(m[0])}
	filled := func(x, y int) bool {
		return y >= 0 && y < len(m) && x >= 0 && x < len(m[y]) && m[y][x] == 1
	}
	for y := range m {
		for x := range m[y] {
			if m[y][x] == 0 {
				continue
			}
			s.cells = append(s.cells, Point{X: x, Y: y})
			n := 0
			for _, d := range [4]Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				if filled(x+d.X, y+d.Y) {
					n++
				}
			}
			if n == 3 {
				s.pivot = Point{X: x, Y: y}
			}
		}
	}
	return s
}

// Piece is a piece type at a rotation state and board anchor.
// Pieces are values; every transformation returns a new Piece.
type Piece struct {
	Type     PieceType `json:"type"`
	Rotation int       `json:"rotation"` // 0..3, clockwise
	X        int       `json:"x"`        // anchor of the pattern's top-left corner
	Y        int       `json:"y"`
}

func (p Piece) shape() shape {
	return shapes[p.Type][p.Rotation&3]
}

// Cells returns the board coordinates occupied by the piece.
func (p Piece) Cells() []Point {
	s := p.shape()
	out := make([]Point, len(s.cells))
	for i, c := range s.cells {
		out[i] = Point{X: p.X + c.X, Y: p.Y + c.Y}
	}
	return out
}

// Width returns the width of the current rotation's pattern.
func (p Piece) Width() int { return p.shape().width }

// Height returns the height of the current rotation's pattern.
func (p Piece) Height() int { return p.shape().height }

// Moved returns the piece shifted by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// Pattern returns the occupancy matrix of the piece's current rotation.
func (p Piece) Pattern() [][]bool {
	s := p.shape()
	m := make([][]bool, s.height)
	for y := range m {
		m[y] = make([]bool, s.width)
	}
	for _, c := range s.cells {
		m[c.Y][c.X] = true
	}
	return m
}

// SpawnPiece returns t at rotation 0, horizontally centred on the top row.
func SpawnPiece(t PieceType) Piece {
	p := Piece{Type: t}
	p.X = (BoardCols - p.Width()) / 2
	return p
}
