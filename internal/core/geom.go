// Package core provides the terminal-independent building blocks of the
// presentation layer: a colored cell canvas, rectangles and key repeat timing.
// It has no Bubble Tea dependency so layouts stay testable.
package core

// Rect is an axis-aligned area of the canvas, in character cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate just past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate just past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by n cells on every side.
// The result never has negative dimensions.
func (r Rect) Inset(n int) Rect {
	return Rect{
		X: r.X + n,
		Y: r.Y + n,
		W: max(r.W-2*n, 0),
		H: max(r.H-2*n, 0),
	}
}

// Below returns a rectangle of height h directly under r, with r's width.
func (r Rect) Below(h int) Rect {
	return Rect{X: r.X, Y: r.Bottom(), W: r.W, H: h}
}

// RightOf returns a w by h rectangle gap cells right of r, top-aligned.
func (r Rect) RightOf(w, h, gap int) Rect {
	return Rect{X: r.Right() + gap, Y: r.Y, W: w, H: h}
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
