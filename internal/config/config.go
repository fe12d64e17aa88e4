// Package config provides YAML-based game configuration loading and
// difficulty presets.
package config

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// TetrisConfig contains all configuration for the game and its services.
type TetrisConfig struct {
	Board        BoardConfig             `yaml:"board"`
	Speed        SpeedConfig             `yaml:"speed"`
	Score        ScoreConfig             `yaml:"score"`
	Level        LevelConfig             `yaml:"level"`
	Preview      int                     `yaml:"preview"`
	Input        InputConfig             `yaml:"input"`
	Modes        map[string]ModeOverride `yaml:"modes"`
	Battle       BattleConfig            `yaml:"battle"`
	Replay       ReplayConfig            `yaml:"replay"`
	Audio        AudioConfig             `yaml:"audio"`
	Achievements []AchievementConfig     `yaml:"achievements"`
}

// BoardConfig pins the board dimensions. Only 20x10 is playable.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// SpeedConfig defines gravity and lock timing in milliseconds.
type SpeedConfig struct {
	Initial   int `yaml:"initial"`
	Min       int `yaml:"min"`
	Decrease  int `yaml:"decrease"`
	LockDelay int `yaml:"lock_delay"`
}

// ScoreConfig defines the scoring tables.
type ScoreConfig struct {
	SoftDrop          int   `yaml:"soft_drop"`
	HardDrop          int   `yaml:"hard_drop"`
	Lines             []int `yaml:"lines"`   // single, double, triple, tetris
	TSpin             []int `yaml:"t_spin"`  // zero, single, double, triple
	Combo             int   `yaml:"combo"`
	PerfectClear      int   `yaml:"perfect_clear"`
	BackToBackPercent int   `yaml:"back_to_back_percent"`
}

// LevelConfig defines level progression.
type LevelConfig struct {
	LinesPerLevel int `yaml:"lines_per_level"`
	Max           int `yaml:"max"`
	Start         int `yaml:"start"`
}

// InputConfig defines auto-repeat timing for held keys.
type InputConfig struct {
	DAS int `yaml:"das"` // delay before auto-repeat, ms
	ARR int `yaml:"arr"` // auto-repeat interval, ms
}

// ModeOverride tweaks a registered mode.
type ModeOverride struct {
	TargetLines int `yaml:"target_lines"`
	TimeLimit   int `yaml:"time_limit"` // seconds
}

// BattleConfig defines online versus parameters.
type BattleConfig struct {
	GarbageMultiplier int `yaml:"garbage_multiplier"`
	TickRate          int `yaml:"tick_rate"`
	LobbyTimeout      int `yaml:"lobby_timeout"` // seconds
}

// ReplayConfig defines replay retention.
type ReplayConfig struct {
	MaxSaved int `yaml:"max_saved"`
}

// AudioConfig defines sound cue playback.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0..1
}

// AchievementConfig defines one unlockable achievement.
type AchievementConfig struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Points      int    `yaml:"points"`
	Threshold   int    `yaml:"threshold"`
}

// Validate reports configuration errors the engine cannot recover from.
func (c TetrisConfig) Validate() error {
	if c.Board.Rows != tetris.BoardRows || c.Board.Cols != tetris.BoardCols {
		return fmt.Errorf("config: board must be %dx%d, got %dx%d",
			tetris.BoardRows, tetris.BoardCols, c.Board.Rows, c.Board.Cols)
	}
	if len(c.Score.Lines) != 4 {
		return fmt.Errorf("config: score.lines needs 4 entries, got %d", len(c.Score.Lines))
	}
	if len(c.Score.TSpin) != 4 {
		return fmt.Errorf("config: score.t_spin needs 4 entries, got %d", len(c.Score.TSpin))
	}
	if c.Speed.Min < 0 || c.Speed.Initial < c.Speed.Min {
		return fmt.Errorf("config: speed.initial (%d) must be >= speed.min (%d) >= 0", c.Speed.Initial, c.Speed.Min)
	}
	return nil
}

// Rules converts the configuration into engine rules.
func (c TetrisConfig) Rules() tetris.Rules {
	r := tetris.Rules{
		InitialInterval:   c.Speed.Initial,
		MinInterval:       c.Speed.Min,
		IntervalDecrease:  c.Speed.Decrease,
		LockDelay:         c.Speed.LockDelay,
		SoftDropPoints:    c.Score.SoftDrop,
		HardDropPoints:    c.Score.HardDrop,
		ComboBonus:        c.Score.Combo,
		PerfectClearBonus: c.Score.PerfectClear,
		BackToBackPercent: c.Score.BackToBackPercent,
		LinesPerLevel:     c.Level.LinesPerLevel,
		MaxLevel:          c.Level.Max,
		StartLevel:        c.Level.Start,
		PreviewCount:      c.Preview,
	}
	for i, v := range c.Score.Lines {
		if i < 4 {
			r.LineScores[i+1] = v
		}
	}
	for i, v := range c.Score.TSpin {
		if i < 4 {
			r.TSpinScores[i] = v
		}
	}
	return r
}

// ApplyMode layers any configured override on top of a registered mode.
func (c TetrisConfig) ApplyMode(m tetris.Mode) tetris.Mode {
	o, ok := c.Modes[m.ID]
	if !ok {
		return m
	}
	if o.TargetLines > 0 {
		m.TargetLines = o.TargetLines
	}
	if o.TimeLimit > 0 {
		m.TimeLimitMs = o.TimeLimit * 1000
	}
	return m
}
