package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func TestPieceColorsAreDistinct(t *testing.T) {
	seen := map[core.Color]tetris.PieceType{}
	for _, p := range tetris.AllPieces {
		c := PieceColor(p)
		assert.NotEqual(t, core.ColorDefault, c, p.String())
		if prev, dup := seen[c]; dup {
			t.Errorf("%s and %s share a color", prev, p)
		}
		seen[c] = p
	}
	assert.Equal(t, core.ColorGray, cellColor(tetris.CellGarbage))
}

func TestDrawWellPlacesCells(t *testing.T) {
	s := core.NewScreen(wellW, wellH)
	var snap tetris.Snapshot
	snap.Board[tetris.BoardRows-1][0] = tetris.CellGarbage
	snap.Board[tetris.BoardRows-1][9] = tetris.PieceT.Cell()

	drawWell(s, wellRect(0, 0), snap, false)

	bottom := tetris.BoardRows
	for _, x := range []int{1, 2} {
		c := s.GetCell(x, bottom)
		assert.Equal(t, blockRune, c.Rune)
		assert.Equal(t, core.ColorGray, c.Color)
	}
	c := s.GetCell(1+9*blockW, bottom)
	assert.Equal(t, blockRune, c.Rune)
	assert.Equal(t, core.ColorMagenta, c.Color)

	// empty cells show a dim dot in their right half
	assert.Equal(t, emptyRune, s.GetCell(4, bottom).Rune)
}

func TestDrawBlockStaysInsideWell(t *testing.T) {
	s := core.NewScreen(wellW, wellH)
	well := wellRect(0, 0)
	s.DrawBox(well, core.ColorWhite)

	drawBlock(s, well, 0, -1, blockRune, core.ColorCyan)
	drawBlock(s, well, 0, tetris.BoardRows, blockRune, core.ColorCyan)
	assert.Equal(t, '┌', s.Get(0, 0))
	assert.Equal(t, '─', s.Get(1, 0))
	assert.Equal(t, '─', s.Get(1, wellH-1))

	drawBlock(s, well, 0, 0, blockRune, core.ColorCyan)
	assert.Equal(t, blockRune, s.Get(1, 1))
	assert.Equal(t, blockRune, s.Get(2, 1))
}

func TestDrawGameLayout(t *testing.T) {
	session := tetris.NewSession(tetris.Options{Seed: 5})
	s := core.NewScreen(gameLayoutW, wellH+2)
	drawGame(s, 0, 0, GameView{Snapshot: session.State(), Mode: tetris.ClassicMode, Pending: 50})

	wellX := sidePanelW + panelGap
	assert.Equal(t, '┌', s.Get(wellX, 0))
	assert.Equal(t, '┐', s.Get(wellX+wellW-1, 0))
	assert.Equal(t, '┌', s.Get(wellX+wellW+panelGap, 0))
	assert.Contains(t, s.Row(0), "HOLD")
	assert.Contains(t, s.Row(0), "NEXT")
	assert.Equal(t, "SCORE", strings.TrimSpace(s.Row(6)[:sidePanelW]))

	// the garbage meter is capped at the board height
	assert.Equal(t, '▌', s.Get(wellX-1, wellH-2))
	assert.Equal(t, '▌', s.Get(wellX-1, wellH-1-tetris.BoardRows))
	assert.NotEqual(t, '▌', s.Get(wellX-1, 0))
}

func TestDrawWellShowsActiveAndGhost(t *testing.T) {
	session := tetris.NewSession(tetris.Options{Seed: 5})
	snap := session.State()
	s := core.NewScreen(wellW, wellH)

	drawWell(s, wellRect(0, 0), snap, true)

	want := PieceColor(snap.Active.Piece.Type)
	for _, p := range snap.Active.Cells {
		if p.Y < 0 {
			continue
		}
		c := s.GetCell(1+p.X*blockW, 1+p.Y)
		assert.Equal(t, blockRune, c.Rune)
		assert.Equal(t, want, c.Color)
	}

	dy := snap.Active.GhostY - snap.Active.Piece.Y
	assert.Positive(t, dy)
	for _, p := range snap.Active.Cells {
		c := s.GetCell(1+p.X*blockW, 1+p.Y+dy)
		assert.Equal(t, ghostRune, c.Rune)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00.0", formatDuration(0))
	assert.Equal(t, "1:05.3", formatDuration(65_300))
	assert.Equal(t, "12:00.0", formatDuration(720_000))
}

func TestDrawGameFitsLayout(t *testing.T) {
	session := tetris.NewSession(tetris.Options{Seed: 5})
	s := core.NewScreen(gameLayoutW, wellH+2)

	drawGame(s, 0, 0, GameView{
		Snapshot: session.State(),
		Mode:     session.Mode(),
		Ghost:    true,
		Title:    "T E T R I S",
	})

	out := s.String()
	assert.Contains(t, out, "NEXT")
	assert.Contains(t, out, "HOLD")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), gameLayoutW)
	}
}
