package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func TestDefaultRulesMatchEngine(t *testing.T) {
	assert.Equal(t, tetris.DefaultRules(), DefaultTetrisConfig().Rules())
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg TetrisConfig
	require.NoError(t, yaml.Unmarshal(defaultTetrisYAML, &cfg))
	require.NoError(t, cfg.Validate())

	def := DefaultTetrisConfig()
	assert.Equal(t, def.Rules(), cfg.Rules())
	assert.Equal(t, def.Input, cfg.Input)
	assert.Equal(t, def.Battle, cfg.Battle)
	assert.Equal(t, def.Replay, cfg.Replay)
	assert.Equal(t, def.Achievements, cfg.Achievements)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TetrisConfig)
		wantErr bool
	}{
		{"defaults", func(*TetrisConfig) {}, false},
		{"wrong rows", func(c *TetrisConfig) { c.Board.Rows = 22 }, true},
		{"wrong cols", func(c *TetrisConfig) { c.Board.Cols = 8 }, true},
		{"short line table", func(c *TetrisConfig) { c.Score.Lines = []int{100} }, true},
		{"short t-spin table", func(c *TetrisConfig) { c.Score.TSpin = nil }, true},
		{"min above initial", func(c *TetrisConfig) { c.Speed.Min = 2000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTetrisConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadTetrisCustomPathPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := "speed:\n  lock_delay: 300\nscore:\n  combo: 75\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadTetris(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Speed.LockDelay)
	assert.Equal(t, 75, cfg.Score.Combo)
	// untouched keys keep their defaults
	assert.Equal(t, 1000, cfg.Speed.Initial)
	assert.Equal(t, []int{100, 300, 500, 800}, cfg.Score.Lines)
}

func TestLoadTetrisCustomPathErrors(t *testing.T) {
	_, err := LoadTetris(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("speed: [1, 2"), 0o644))
	_, err = LoadTetris(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	wrongBoard := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(wrongBoard, []byte("board:\n  rows: 40\n  cols: 10\n"), 0o644))
	_, err = LoadTetris(wrongBoard)
	assert.ErrorContains(t, err, "board must be 20x10")
}

func TestLoadTetrisLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "tetris.yaml"), []byte("preview: 5\n"), 0o644))
	t.Chdir(dir)

	cfg, err := LoadTetris("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Preview)
}

func TestLoadTetrisEmbeddedFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadTetris("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.ApplyMode(tetris.Mode{ID: "sprint"}).TargetLines)
	assert.Equal(t, 120000, cfg.ApplyMode(tetris.Mode{ID: "ultra"}).TimeLimitMs)
}

func TestApplyMode(t *testing.T) {
	cfg := DefaultTetrisConfig()
	cfg.Modes["sprint"] = ModeOverride{TargetLines: 40}

	m := cfg.ApplyMode(tetris.Mode{ID: "sprint", TargetLines: 20})
	assert.Equal(t, 40, m.TargetLines)

	other := tetris.Mode{ID: "classic"}
	assert.Equal(t, other, cfg.ApplyMode(other))
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    DifficultyPreset
		wantErr bool
	}{
		{"", DifficultyNormal, false},
		{"easy", DifficultyEasy, false},
		{"hard", DifficultyHard, false},
		{"fixed", DifficultyFixed, false},
		{"nightmare", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestApplyTetrisPreset(t *testing.T) {
	cfg := DefaultTetrisConfig()
	ApplyTetrisPreset(&cfg, DifficultyHard)
	assert.Equal(t, 5, cfg.Level.Start)
	assert.Equal(t, 350, cfg.Speed.LockDelay)
	assert.Equal(t, 1, cfg.Preview)

	cfg = DefaultTetrisConfig()
	ApplyTetrisPreset(&cfg, DifficultyEasy)
	assert.Equal(t, 1, cfg.Level.Start)
	assert.Equal(t, 750, cfg.Speed.LockDelay)
	assert.Equal(t, 5, cfg.Preview)

	cfg = DefaultTetrisConfig()
	ApplyTetrisPreset(&cfg, DifficultyFixed)
	SetStartLevel(&cfg, 7)
	r := cfg.Rules()
	assert.Equal(t, 7, r.Level(0))
	assert.Equal(t, 7, r.Level(500))
}

func TestSetStartLevelClamps(t *testing.T) {
	cfg := DefaultTetrisConfig()
	SetStartLevel(&cfg, 0)
	assert.Equal(t, 1, cfg.Level.Start)
	SetStartLevel(&cfg, 99)
	assert.Equal(t, 20, cfg.Level.Start)
}
