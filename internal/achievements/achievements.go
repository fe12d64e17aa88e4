// Package achievements decides which achievements a game has earned.
package achievements

import (
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Known achievement IDs.
const (
	FirstClear  = "first_clear"
	ComboMaster = "combo_master"
	SpeedDemon  = "speed_demon"
)

// Definition describes one achievement and the threshold that unlocks it.
type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Threshold   int    `json:"threshold"`
}

// metrics maps an achievement ID to the statistic compared to its threshold.
var metrics = map[string]func(progress) int{
	FirstClear:  func(p progress) int { return p.lines },
	ComboMaster: func(p progress) int { return p.maxCombo },
	SpeedDemon:  func(p progress) int { return p.hardDrops },
}

type progress struct {
	lines     int
	maxCombo  int
	hardDrops int
}

func progressOf(st tetris.Stats) progress {
	return progress{lines: st.TotalLines, maxCombo: st.MaxCombo, hardDrops: st.HardDrops}
}

// Known reports whether id has an unlock rule.
func Known(id string) bool {
	_, ok := metrics[id]
	return ok
}

// FromConfig converts configured achievements, dropping IDs without a rule.
func FromConfig(cfgs []config.AchievementConfig) []Definition {
	defs := make([]Definition, 0, len(cfgs))
	for _, c := range cfgs {
		if !Known(c.ID) {
			continue
		}
		defs = append(defs, Definition{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Points:      c.Points,
			Threshold:   max(c.Threshold, 1),
		})
	}
	return defs
}

// Defaults returns the built-in achievement set.
func Defaults() []Definition {
	return FromConfig(config.DefaultTetrisConfig().Achievements)
}

func (d Definition) reached(p progress) bool {
	m, ok := metrics[d.ID]
	return ok && m(p) >= d.Threshold
}

// Evaluate returns the definitions a finished game satisfies.
func Evaluate(defs []Definition, sum tetris.Summary) []Definition {
	p := progressOf(sum.Stats)
	var out []Definition
	for _, d := range defs {
		if d.reached(p) {
			out = append(out, d)
		}
	}
	return out
}

// Points sums the points of the unlocked IDs.
func Points(defs []Definition, unlocked []string) int {
	set := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		set[id] = true
	}
	total := 0
	for _, d := range defs {
		if set[d.ID] {
			total += d.Points
		}
	}
	return total
}
