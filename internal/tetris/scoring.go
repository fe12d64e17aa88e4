package tetris

// Rules holds the timing and scoring constants of a session.
type Rules struct {
	InitialInterval  int `json:"initialIntervalMs"` // ms per row at level 1
	MinInterval      int `json:"minIntervalMs"`
	IntervalDecrease int `json:"intervalDecreaseMs"` // ms removed per level
	LockDelay        int `json:"lockDelayMs"`

	SoftDropPoints    int    `json:"softDropPoints"`
	HardDropPoints    int    `json:"hardDropPoints"`
	LineScores        [5]int `json:"lineScores"`  // indexed by lines cleared, multiplied by level
	TSpinScores       [4]int `json:"tSpinScores"` // indexed by lines cleared, multiplied by level
	ComboBonus        int    `json:"comboBonus"`
	PerfectClearBonus int    `json:"perfectClearBonus"`
	BackToBackPercent int    `json:"backToBackPercent"`

	LinesPerLevel int `json:"linesPerLevel"`
	MaxLevel      int `json:"maxLevel"`
	StartLevel    int `json:"startLevel"`

	PreviewCount int `json:"previewCount"`
}

// DefaultRules returns the canonical rule set.
func DefaultRules() Rules {
	return Rules{
		InitialInterval:   1000,
		MinInterval:       100,
		IntervalDecrease:  50,
		LockDelay:         500,
		SoftDropPoints:    1,
		HardDropPoints:    2,
		LineScores:        [5]int{0, 100, 300, 500, 800},
		TSpinScores:       [4]int{400, 800, 1200, 1600},
		ComboBonus:        50,
		PerfectClearBonus: 1000,
		BackToBackPercent: 150,
		LinesPerLevel:     10,
		MaxLevel:          20,
		StartLevel:        1,
		PreviewCount:      3,
	}
}

// normalized fills in values that would otherwise break the session.
func (r Rules) normalized() Rules {
	if r.PreviewCount < 1 {
		r.PreviewCount = 1
	}
	if r.LinesPerLevel < 1 {
		r.LinesPerLevel = 10
	}
	if r.MaxLevel < 1 {
		r.MaxLevel = 1
	}
	r.StartLevel = clamp(r.StartLevel, 1, r.MaxLevel)
	if r.LockDelay < 0 {
		r.LockDelay = 0
	}
	if r.BackToBackPercent < 100 {
		r.BackToBackPercent = 100
	}
	return r
}

// Level returns the level reached after clearing lines.
func (r Rules) Level(lines int) int {
	lvl := lines/r.LinesPerLevel + 1
	if lvl < r.StartLevel {
		lvl = r.StartLevel
	}
	if lvl > r.MaxLevel {
		lvl = r.MaxLevel
	}
	return lvl
}

// DropInterval returns the gravity interval in ms for a level.
func (r Rules) DropInterval(level int) int {
	return max(r.MinInterval, r.InitialInterval-(level-1)*r.IntervalDecrease)
}

// IsDifficult reports whether a clear continues a back-to-back chain.
func IsDifficult(lines int, tSpin bool) bool {
	return lines == 4 || (tSpin && lines > 0)
}

// LockScore describes the points awarded for one lock.
type LockScore struct {
	Base         int // table entry times level, after back-to-back
	Combo        int
	PerfectClear int
	BackToBack   bool
}

// Total returns the sum of every component.
func (s LockScore) Total() int {
	return s.Base + s.Combo + s.PerfectClear
}

// ScoreLock computes the points for a lock. combo is the counter after this
// lock has been applied, and chain reports whether the previous clearing
// lock was difficult.
func (r Rules) ScoreLock(level, lines int, tSpin, perfect bool, combo int, chain bool) LockScore {
	var s LockScore
	lines = clamp(lines, 0, 4)

	switch {
	case tSpin:
		s.Base = r.TSpinScores[min(lines, 3)] * level
	case lines > 0:
		s.Base = r.LineScores[lines] * level
	}

	if chain && IsDifficult(lines, tSpin) {
		s.Base = s.Base * r.BackToBackPercent / 100
		s.BackToBack = true
	}

	if lines > 0 && combo > 1 {
		s.Combo = r.ComboBonus * (combo - 1)
	}
	if perfect {
		s.PerfectClear = r.PerfectClearBonus
	}
	return s
}
