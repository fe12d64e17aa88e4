package config

import (
	"fmt"
	"math"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed" // no level progression
)

// ParseDifficulty validates a preset name. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// StartLevelForPreset returns the starting level for a difficulty preset.
func StartLevelForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyHard:
		return 5
	default:
		return 1
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyTetrisPreset modifies the config based on a difficulty preset.
func ApplyTetrisPreset(cfg *TetrisConfig, preset DifficultyPreset) {
	cfg.Level.Start = StartLevelForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.Speed.LockDelay = 750
		cfg.Preview = max(cfg.Preview, 5)
	case DifficultyHard:
		cfg.Speed.LockDelay = 350
		cfg.Preview = 1
	case DifficultyFixed:
		// no amount of cleared lines reaches the next level
		cfg.Level.LinesPerLevel = math.MaxInt32
	}
}

// SetStartLevel overrides the starting level, keeping it within range.
func SetStartLevel(cfg *TetrisConfig, level int) {
	if level < 1 {
		level = 1
	}
	if level > cfg.Level.Max {
		level = cfg.Level.Max
	}
	cfg.Level.Start = level
}
