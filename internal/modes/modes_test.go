package modes

import (
	"testing"

	"github.com/vovakirdan/tui-tetris/internal/registry"
)

func TestBuiltinModesRegistered(t *testing.T) {
	tests := []struct {
		id       string
		target   int
		limitMs  int
		gravity  bool
		raceMode bool
	}{
		{Classic, 0, 0, false, false},
		{Sprint, 20, 0, false, true},
		{Marathon, 150, 0, false, true},
		{Ultra, 0, 120_000, false, false},
		{Master, 0, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			m, err := registry.Get(tt.id)
			if err != nil {
				t.Fatalf("Get(%q): %v", tt.id, err)
			}
			if m.TargetLines != tt.target || m.TimeLimitMs != tt.limitMs || m.Gravity20 != tt.gravity {
				t.Errorf("mode %q = %+v", tt.id, m)
			}
			if IsRace(m) != tt.raceMode {
				t.Errorf("IsRace(%q) = %v, want %v", tt.id, IsRace(m), tt.raceMode)
			}
		})
	}
}
