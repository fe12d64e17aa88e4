// Package modes registers the built-in game modes.
package modes

import (
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Mode IDs.
const (
	Classic  = "classic"
	Sprint   = "sprint"
	Marathon = "marathon"
	Ultra    = "ultra"
	Master   = "master"
)

func init() {
	registry.Register(Classic, func() tetris.Mode { return tetris.ClassicMode })

	registry.Register(Sprint, func() tetris.Mode {
		return tetris.Mode{
			ID:          Sprint,
			Title:       "Sprint",
			Description: "Clear 20 lines as fast as possible",
			TargetLines: 20,
		}
	})

	registry.Register(Marathon, func() tetris.Mode {
		return tetris.Mode{
			ID:          Marathon,
			Title:       "Marathon",
			Description: "Survive to 150 lines",
			TargetLines: 150,
		}
	})

	registry.Register(Ultra, func() tetris.Mode {
		return tetris.Mode{
			ID:          Ultra,
			Title:       "Ultra",
			Description: "Highest score in two minutes",
			TimeLimitMs: 120_000,
		}
	})

	registry.Register(Master, func() tetris.Mode {
		return tetris.Mode{
			ID:          Master,
			Title:       "Master",
			Description: "20G gravity, pieces fall instantly",
			Gravity20:   true,
		}
	})
}

// IsRace reports whether a mode ranks runs by time rather than score.
func IsRace(m tetris.Mode) bool {
	return m.TargetLines > 0 && m.TimeLimitMs == 0
}
