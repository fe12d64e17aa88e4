package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func ids(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func TestDefaults(t *testing.T) {
	defs := Defaults()
	require.Len(t, defs, 3)
	assert.Equal(t, []string{FirstClear, ComboMaster, SpeedDemon}, ids(defs))
	assert.Equal(t, 60, Points(defs, ids(defs)))
}

func TestFromConfigDropsUnknown(t *testing.T) {
	defs := FromConfig([]config.AchievementConfig{
		{ID: FirstClear, Points: 10},
		{ID: "moon_landing", Points: 99, Threshold: 1},
	})
	require.Len(t, defs, 1)
	assert.Equal(t, 1, defs[0].Threshold, "missing threshold defaults to 1")
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		stats tetris.Stats
		want  []string
	}{
		{"nothing", tetris.Stats{}, nil},
		{"one line", tetris.Stats{TotalLines: 1}, []string{FirstClear}},
		{"combo", tetris.Stats{TotalLines: 9, MaxCombo: 5}, []string{FirstClear, ComboMaster}},
		{"combo just short", tetris.Stats{MaxCombo: 4}, nil},
		{"hard drops", tetris.Stats{HardDrops: 50}, []string{SpeedDemon}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(Defaults(), tetris.Summary{Stats: tt.stats})
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTrackerReportsOnce(t *testing.T) {
	tr := NewTracker(Defaults(), nil)

	tr.Observe(tetris.LineClear{Count: 2})
	assert.Equal(t, []string{FirstClear}, ids(tr.Drain()))
	assert.Empty(t, tr.Drain())

	tr.Observe(tetris.LineClear{Count: 1})
	assert.Empty(t, tr.Drain())
	assert.True(t, tr.Unlocked(FirstClear))
}

func TestTrackerCombo(t *testing.T) {
	tr := NewTracker(Defaults(), []string{FirstClear})

	for c := 1; c <= 4; c++ {
		tr.Observe(tetris.ComboChanged{Count: c})
	}
	assert.Empty(t, tr.Drain())

	tr.Observe(tetris.ComboChanged{Count: 0})
	tr.Observe(tetris.ComboChanged{Count: 5})
	assert.Equal(t, []string{ComboMaster}, ids(tr.Drain()))
}

func TestTrackerHardDropsResetPerGame(t *testing.T) {
	tr := NewTracker(Defaults(), nil)

	for i := 0; i < 49; i++ {
		tr.Observe(tetris.HardDropped{})
	}
	tr.Observe(tetris.SessionReset{})
	tr.Observe(tetris.HardDropped{})
	assert.Empty(t, tr.Drain(), "hard drops do not carry over a reset")

	for i := 0; i < 49; i++ {
		tr.Observe(tetris.HardDropped{})
	}
	assert.Equal(t, []string{SpeedDemon}, ids(tr.Drain()))
}

func TestTrackerAttach(t *testing.T) {
	s := tetris.NewSession(tetris.Options{Seed: 1})
	tr := NewTracker([]Definition{{ID: SpeedDemon, Threshold: 1, Points: 30}}, nil)
	tr.Attach(s)

	s.ApplyCommand(tetris.CmdHardDrop)
	assert.Equal(t, []string{SpeedDemon}, ids(tr.Drain()))
}
