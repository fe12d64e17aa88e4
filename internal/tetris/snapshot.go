package tetris

// ActivePiece is the falling piece as seen by observers.
type ActivePiece struct {
	Piece  Piece   `json:"piece"`
	Cells  []Point `json:"cells"`
	GhostY int     `json:"ghostY"` // anchor row a hard drop would land on
}

// Snapshot is a read-only copy of the session state. Mutating it never
// affects the session.
type Snapshot struct {
	Board      Board       `json:"board"`
	Active     ActivePiece `json:"active"`
	Next       []PieceType `json:"next"`
	Hold       PieceType   `json:"hold"`
	HoldUsed   bool        `json:"holdUsed"`
	Score      int         `json:"score"`
	Level      int         `json:"level"`
	Lines      int         `json:"lines"`
	Combo      int         `json:"combo"`
	BackToBack bool        `json:"backToBack"`
	Interval   int         `json:"intervalMs"`
	LastAction LastAction  `json:"-"`
	IsPaused   bool        `json:"isPaused"`
	IsGameOver bool        `json:"isGameOver"`
	Reason     EndReason   `json:"reason,omitempty"`
	Mode       string      `json:"mode"`
	Seed       int64       `json:"seed"`
	ElapsedMs  int         `json:"elapsedMs"`
	Stats      Stats       `json:"statistics"`
}

// State returns a snapshot of the session. It is safe to call at any time.
func (s *Session) State() Snapshot {
	return Snapshot{
		Board: s.board,
		Active: ActivePiece{
			Piece:  s.active,
			Cells:  s.active.Cells(),
			GhostY: s.active.Y + s.dropDistance(),
		},
		Next:       append([]PieceType(nil), s.next...),
		Hold:       s.hold,
		HoldUsed:   s.holdUsed,
		Score:      s.score,
		Level:      s.level,
		Lines:      s.lines,
		Combo:      s.combo,
		BackToBack: s.b2b,
		Interval:   s.interval,
		LastAction: s.last,
		IsPaused:   s.status == StatusPaused,
		IsGameOver: s.status == StatusGameOver,
		Reason:     s.reason,
		Mode:       s.mode.ID,
		Seed:       s.opts.Seed,
		ElapsedMs:  s.elapsed,
		Stats:      s.stats.clone(),
	}
}

// RemainingMs returns the time left in a timed mode, or -1 when the mode has
// no time limit.
func (s Snapshot) RemainingMs(m Mode) int {
	if m.TimeLimitMs <= 0 {
		return -1
	}
	return max(0, m.TimeLimitMs-s.ElapsedMs)
}
