package tetris

// Mode describes the win and end conditions layered on top of the rules.
type Mode struct {
	ID          string
	Title       string
	Description string
	TargetLines int  // session completes when reached, 0 for none
	TimeLimitMs int  // session ends when ticked time reaches it, 0 for none
	Gravity20   bool // pieces fall to rest on every tick
}

// ClassicMode is the endless default.
var ClassicMode = Mode{
	ID:          "classic",
	Title:       "Classic",
	Description: "Endless play, speed rises with level",
}

// EndReason explains why a session ended.
type EndReason string

const (
	EndNone      EndReason = ""
	EndTopOut    EndReason = "topOut"
	EndCompleted EndReason = "completed"
	EndTimeUp    EndReason = "timeUp"
	EndReset     EndReason = "reset"
)

// ClearCounts tallies line clears by kind.
type ClearCounts struct {
	Single       int `json:"single"`
	Double       int `json:"double"`
	Triple       int `json:"triple"`
	Tetris       int `json:"tetris"`
	TSpin        int `json:"tSpin"`
	PerfectClear int `json:"perfectClear"`
}

// Stats accumulates per-session statistics.
type Stats struct {
	TotalPieces int               `json:"totalPieces"`
	TotalLines  int               `json:"totalLines"`
	MaxCombo    int               `json:"maxCombo"`
	HardDrops   int               `json:"hardDrops"`
	PieceStats  map[PieceType]int `json:"pieceStats"`
	ClearCounts ClearCounts       `json:"clearCounts"`
}

func newStats() Stats {
	return Stats{PieceStats: make(map[PieceType]int, len(AllPieces))}
}

func (s Stats) clone() Stats {
	out := s
	out.PieceStats = make(map[PieceType]int, len(s.PieceStats))
	for t, n := range s.PieceStats {
		out.PieceStats[t] = n
	}
	return out
}

func (s *Stats) recordClear(lines int, tSpin, perfect bool) {
	if tSpin {
		s.ClearCounts.TSpin++
	}
	switch lines {
	case 1:
		s.ClearCounts.Single++
	case 2:
		s.ClearCounts.Double++
	case 3:
		s.ClearCounts.Triple++
	case 4:
		s.ClearCounts.Tetris++
	}
	if perfect {
		s.ClearCounts.PerfectClear++
	}
}

// Summary is the finalized record of a session.
type Summary struct {
	Mode       string    `json:"mode"`
	Seed       int64     `json:"seed"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Lines      int       `json:"lines"`
	DurationMs int       `json:"durationMs"`
	Reason     EndReason `json:"reason"`
	Stats      Stats     `json:"statistics"`
}
