package config

import (
	_ "embed"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the default configuration.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Board: BoardConfig{Rows: 20, Cols: 10},
		Speed: SpeedConfig{
			Initial:   1000,
			Min:       100,
			Decrease:  50,
			LockDelay: 500,
		},
		Score: ScoreConfig{
			SoftDrop:          1,
			HardDrop:          2,
			Lines:             []int{100, 300, 500, 800},
			TSpin:             []int{400, 800, 1200, 1600},
			Combo:             50,
			PerfectClear:      1000,
			BackToBackPercent: 150,
		},
		Level: LevelConfig{
			LinesPerLevel: 10,
			Max:           20,
			Start:         1,
		},
		Preview: 3,
		Input: InputConfig{
			DAS: 133,
			ARR: 33,
		},
		Modes: map[string]ModeOverride{},
		Battle: BattleConfig{
			GarbageMultiplier: 1,
			TickRate:          60,
			LobbyTimeout:      120,
		},
		Replay: ReplayConfig{MaxSaved: 10},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
		Achievements: []AchievementConfig{
			{ID: "first_clear", Title: "First Clear", Description: "Clear your first line", Points: 10, Threshold: 1},
			{ID: "combo_master", Title: "Combo Master", Description: "Reach a 5 combo", Points: 20, Threshold: 5},
			{ID: "speed_demon", Title: "Speed Demon", Description: "Hard drop 50 times in one game", Points: 30, Threshold: 50},
		},
	}
}
