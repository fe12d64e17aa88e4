package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = func() map[core.Color]lipgloss.Style {
	styles := make(map[core.Color]lipgloss.Style, int(core.ColorDim)+1)
	for c := core.ColorDefault; c <= core.ColorDim; c++ {
		style := lipgloss.NewStyle()
		if code := c.ANSI(); code != "" {
			style = style.Foreground(lipgloss.Color(code))
		}
		styles[c] = style
	}
	return styles
}()

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// PieceColor returns the display color of a piece type.
func PieceColor(t tetris.PieceType) core.Color {
	switch t {
	case tetris.PieceI:
		return core.ColorCyan
	case tetris.PieceO:
		return core.ColorYellow
	case tetris.PieceT:
		return core.ColorMagenta
	case tetris.PieceS:
		return core.ColorGreen
	case tetris.PieceZ:
		return core.ColorRed
	case tetris.PieceJ:
		return core.ColorBlue
	case tetris.PieceL:
		return core.ColorOrange
	default:
		return core.ColorDefault
	}
}

func cellColor(c tetris.Cell) core.Color {
	if c == tetris.CellGarbage {
		return core.ColorGray
	}
	return PieceColor(c.PieceType())
}

// Layout sizes in screen cells. Every board cell is two characters wide.
const (
	blockW      = 2
	wellW       = tetris.BoardCols*blockW + 2
	wellH       = tetris.BoardRows + 2
	sidePanelW  = 12
	panelGap    = 2
	gameLayoutW = sidePanelW + panelGap + wellW + panelGap + sidePanelW
)

const (
	blockRune = '█'
	ghostRune = '░'
	emptyRune = '·'
)

// wellRect returns the area of a board drawn with its top-left corner at (x, y).
func wellRect(x, y int) core.Rect {
	return core.NewRect(x, y, wellW, wellH)
}

// drawBlock paints one board cell of the well at r. Cells above the
// visible board are skipped.
func drawBlock(s *core.Screen, r core.Rect, col, row int, ch rune, c core.Color) {
	inner := r.Inset(1)
	x := inner.X + col*blockW
	y := inner.Y + row
	if !inner.Contains(x, y) {
		return
	}
	for i := range blockW {
		s.SetCell(x+i, y, core.Cell{Rune: ch, Color: c})
	}
}

// drawWell draws the board, the ghost and the active piece.
func drawWell(s *core.Screen, r core.Rect, snap tetris.Snapshot, ghost bool) {
	s.DrawBox(r, core.ColorWhite)
	inner := r.Inset(1)

	for row := range tetris.BoardRows {
		for col := range tetris.BoardCols {
			cell := snap.Board[row][col]
			if cell.IsEmpty() {
				x := inner.X + col*blockW
				s.SetCell(x, inner.Y+row, core.Cell{Rune: ' '})
				s.SetCell(x+1, inner.Y+row, core.Cell{Rune: emptyRune, Color: core.ColorDim})
				continue
			}
			drawBlock(s, r, col, row, blockRune, cellColor(cell))
		}
	}

	if snap.IsGameOver || !snap.Active.Piece.Type.Valid() {
		return
	}

	if ghost {
		dy := snap.Active.GhostY - snap.Active.Piece.Y
		for _, p := range snap.Active.Cells {
			if dy > 0 {
				drawBlock(s, r, p.X, p.Y+dy, ghostRune, core.ColorDim)
			}
		}
	}
	color := PieceColor(snap.Active.Piece.Type)
	for _, p := range snap.Active.Cells {
		drawBlock(s, r, p.X, p.Y, blockRune, color)
	}
}

// drawPieceBox draws a titled box with the given pieces stacked vertically.
// Pieces are drawn dimmed when dim is set.
func drawPieceBox(s *core.Screen, r core.Rect, title string, pieces []tetris.PieceType, dim bool) {
	s.DrawBox(r, core.ColorWhite)
	s.DrawText(r.X+2, r.Y, " "+title+" ", core.ColorBrightWhite)

	inner := r.Inset(1)
	y := inner.Y
	for _, t := range pieces {
		if !t.Valid() || y+2 > inner.Bottom() {
			continue
		}
		p := tetris.Piece{Type: t}
		color := PieceColor(t)
		if dim {
			color = core.ColorGray
		}
		offset := (inner.W - p.Width()*blockW) / 2
		for py, line := range p.Pattern() {
			for px, on := range line {
				if !on {
					continue
				}
				x := inner.X + offset + px*blockW
				for i := range blockW {
					s.SetCell(x+i, y+py, core.Cell{Rune: blockRune, Color: color})
				}
			}
		}
		y += 3
	}
}

// drawOverlay draws a framed message box centered over the well.
func drawOverlay(s *core.Screen, well core.Rect, lines []string, c core.Color) {
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	w = core.Clamp(w+4, 0, well.W)
	h := len(lines) + 2
	box := core.NewRect(well.X+(well.W-w)/2, well.Y+(well.H-h)/2, w, h)

	s.DrawRect(box, core.Cell{Rune: ' '})
	s.DrawBox(box, c)
	for i, l := range lines {
		s.DrawTextCentered(box, box.Y+1+i, l, c)
	}
}

// formatDuration renders milliseconds as m:ss.t.
func formatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d.%d", ms/60000, ms/1000%60, ms/100%10)
}

// GameView describes everything drawn for one board.
type GameView struct {
	Snapshot tetris.Snapshot
	Mode     tetris.Mode
	Ghost    bool
	Title    string   // shown above the well, optional
	Extra    []string // free text under the stats panel
	Overlay  []string // message box over the well, optional
	Pending  int      // incoming garbage meter, battle only
}

// drawGame draws a complete single-board layout at (x, y): hold and stats on
// the left, the well in the middle, next pieces on the right.
func drawGame(s *core.Screen, x, y int, v GameView) {
	snap := v.Snapshot

	hold := core.NewRect(x, y, sidePanelW, 5)
	var held []tetris.PieceType
	if snap.Hold.Valid() {
		held = []tetris.PieceType{snap.Hold}
	}
	drawPieceBox(s, hold, "HOLD", held, snap.HoldUsed)

	stats := []string{
		"SCORE",
		fmt.Sprintf("%d", snap.Score),
		"",
		fmt.Sprintf("LEVEL %d", snap.Level),
		fmt.Sprintf("LINES %d", snap.Lines),
	}
	if snap.Combo > 1 {
		stats = append(stats, fmt.Sprintf("COMBO x%d", snap.Combo))
	}
	if snap.BackToBack {
		stats = append(stats, "B2B")
	}
	stats = append(stats, "")
	if rem := snap.RemainingMs(v.Mode); rem >= 0 {
		stats = append(stats, "LEFT", formatDuration(rem))
	} else {
		stats = append(stats, "TIME", formatDuration(snap.ElapsedMs))
	}
	if v.Mode.TargetLines > 0 {
		stats = append(stats, fmt.Sprintf("GOAL %d", max(0, v.Mode.TargetLines-snap.Lines)))
	}
	info := hold.Below(1 + len(stats) + 1 + len(v.Extra))
	for i, line := range stats {
		s.DrawText(info.X+1, info.Y+1+i, line, core.ColorBrightWhite)
	}
	for i, line := range v.Extra {
		s.DrawText(info.X+1, info.Y+2+len(stats)+i, line, core.ColorGray)
	}

	well := hold.RightOf(wellW, wellH, panelGap)
	drawWell(s, well, snap, v.Ghost)
	if v.Title != "" {
		s.DrawTextCentered(well, y-1, v.Title, core.ColorBrightYellow)
	}
	if v.Pending > 0 {
		for i := range core.Clamp(v.Pending, 0, tetris.BoardRows) {
			s.SetCell(well.X-1, well.Bottom()-2-i, core.Cell{Rune: '▌', Color: core.ColorBrightRed})
		}
	}

	next := well.RightOf(sidePanelW, 2+3*max(len(snap.Next), 1), panelGap)
	drawPieceBox(s, next, "NEXT", snap.Next, false)
	modeName := v.Mode.Title
	if modeName == "" {
		modeName = snap.Mode
	}
	s.DrawText(next.X+1, next.Bottom()+1, strings.ToUpper(modeName), core.ColorBrightCyan)

	if len(v.Overlay) > 0 {
		drawOverlay(s, well, v.Overlay, core.ColorBrightYellow)
	}
}
