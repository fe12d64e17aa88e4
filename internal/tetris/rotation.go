package tetris

// Kick is a wall-kick offset tried after a rotation.
type Kick struct {
	DX, DY int
}

var (
	baseKicks = []Kick{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {-1, -1}, {1, -1}}
	tKicks    = append(append([]Kick(nil), baseKicks...), Kick{-1, 1}, Kick{1, 1})
)

// KicksFor returns the ordered wall-kick candidates for a piece type.
func KicksFor(t PieceType) []Kick {
	if t == PieceT {
		return tKicks
	}
	return baseKicks
}

// Rotate returns p with its rotation advanced by dir (1 clockwise, -1
// counter-clockwise) at the same anchor. It does not check collisions.
func Rotate(p Piece, dir int) Piece {
	p.Rotation = ((p.Rotation+dir)%4 + 4) % 4
	return p
}

// TryRotate rotates p and runs the wall-kick search against b. It returns the
// placed piece, the accepted kick, and false when every candidate collides.
func TryRotate(b Board, p Piece, dir int) (Piece, Kick, bool) {
	candidate := Rotate(p, dir)
	for _, k := range KicksFor(p.Type) {
		if !Collides(b, candidate, k.DX, k.DY) {
			return candidate.Moved(k.DX, k.DY), k, true
		}
	}
	return p, Kick{}, false
}

// TSpinCorners counts the diagonal neighbours of a T piece's pivot that are
// out of bounds or occupied. It returns 0 for other piece types.
func TSpinCorners(b Board, p Piece) int {
	if p.Type != PieceT {
		return 0
	}
	pv := p.shape().pivot
	cx, cy := p.X+pv.X, p.Y+pv.Y
	n := 0
	for _, d := range [4]Point{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		x, y := cx+d.X, cy+d.Y
		if !b.InBounds(x, y) || !b[y][x].IsEmpty() {
			n++
		}
	}
	return n
}

// IsTSpin reports whether locking p now counts as a T-Spin.
func IsTSpin(b Board, p Piece, last LastAction) bool {
	return p.Type == PieceT && last == ActionRotate && TSpinCorners(b, p) >= 3
}
