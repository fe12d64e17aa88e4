package tetris

import "testing"

func TestScoreLock(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name    string
		level   int
		lines   int
		tSpin   bool
		perfect bool
		combo   int
		chain   bool
		want    int
		b2b     bool
	}{
		{name: "nothing", level: 1, want: 0},
		{name: "single", level: 1, lines: 1, combo: 1, want: 100},
		{name: "double level 3", level: 3, lines: 2, combo: 1, want: 900},
		{name: "triple", level: 1, lines: 3, combo: 1, want: 500},
		{name: "tetris", level: 2, lines: 4, combo: 1, want: 1600},
		{name: "single with combo 2", level: 1, lines: 1, combo: 2, want: 150},
		{name: "single with combo 4", level: 1, lines: 1, combo: 4, want: 250},
		{name: "t-spin no lines", level: 1, tSpin: true, want: 400},
		{name: "t-spin single", level: 1, lines: 1, tSpin: true, combo: 1, want: 800},
		{name: "t-spin double", level: 2, lines: 2, tSpin: true, combo: 1, want: 2400},
		{name: "t-spin triple", level: 1, lines: 3, tSpin: true, combo: 1, want: 1600},
		{name: "back-to-back tetris", level: 1, lines: 4, combo: 1, chain: true, want: 1200, b2b: true},
		{name: "chain ignored for single", level: 1, lines: 1, combo: 1, chain: true, want: 100},
		{name: "chain ignored for zero-line t-spin", level: 1, tSpin: true, chain: true, want: 400},
		{name: "perfect clear single", level: 1, lines: 1, perfect: true, combo: 1, want: 1100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ScoreLock(tt.level, tt.lines, tt.tSpin, tt.perfect, tt.combo, tt.chain)
			if got.Total() != tt.want {
				t.Errorf("Total() = %d, want %d (%+v)", got.Total(), tt.want, got)
			}
			if got.BackToBack != tt.b2b {
				t.Errorf("BackToBack = %v, want %v", got.BackToBack, tt.b2b)
			}
		})
	}
}

func TestLevelAndInterval(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		lines    int
		level    int
		interval int
	}{
		{0, 1, 1000},
		{9, 1, 1000},
		{10, 2, 950},
		{55, 6, 750},
		{180, 19, 100},
		{1000, 20, 100},
	}
	for _, tt := range tests {
		lvl := r.Level(tt.lines)
		if lvl != tt.level {
			t.Errorf("Level(%d) = %d, want %d", tt.lines, lvl, tt.level)
		}
		if got := r.DropInterval(lvl); got != tt.interval {
			t.Errorf("DropInterval(%d) = %d, want %d", lvl, got, tt.interval)
		}
	}
}

func TestStartLevel(t *testing.T) {
	r := DefaultRules()
	r.StartLevel = 5
	r = r.normalized()
	if got := r.Level(12); got != 5 {
		t.Errorf("Level(12) with start 5 = %d, want 5", got)
	}
	if got := r.Level(60); got != 7 {
		t.Errorf("Level(60) with start 5 = %d, want 7", got)
	}
}

func TestBackToBackAcrossSession(t *testing.T) {
	s := NewSession(Options{Seed: 11})
	tetris := func() int {
		s.board = Board{}
		for y := BoardRows - 4; y < BoardRows; y++ {
			fillRow(&s.board, y, 0)
		}
		s.board[BoardRows-5][9] = CellGarbage
		s.active = Piece{Type: PieceI, Rotation: 1, X: 0, Y: 0}
		before := s.State().Score
		s.ApplyCommand(CmdHardDrop)
		return s.State().Score - before
	}

	drop := (BoardRows - 4) * 2
	if got := tetris(); got != drop+800 {
		t.Errorf("first tetris = %d, want %d", got, drop+800)
	}
	if !s.State().BackToBack {
		t.Error("back-to-back flag should be armed after a tetris")
	}
	// combo 2 adds 50 on top of the 1.5x tetris
	if got := tetris(); got != drop+1200+50 {
		t.Errorf("second tetris = %d, want %d", got, drop+1200+50)
	}
}
