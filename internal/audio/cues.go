// Package audio plays short synthesized cues for game events.
package audio

import (
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Cue is a named sound effect.
type Cue int

const (
	CueNone Cue = iota
	CueMove
	CueRotate
	CueDrop
	CueLock
	CueClear
	CueTetris
	CueCombo
	CueLevelUp
	CueGameOver
	CueHold
	CueGarbage
)

var cueNames = [...]string{
	CueNone:     "none",
	CueMove:     "move",
	CueRotate:   "rotate",
	CueDrop:     "drop",
	CueLock:     "lock",
	CueClear:    "clear",
	CueTetris:   "tetris",
	CueCombo:    "combo",
	CueLevelUp:  "levelUp",
	CueGameOver: "gameOver",
	CueHold:     "hold",
	CueGarbage:  "garbage",
}

func (c Cue) String() string {
	if c < 0 || int(c) >= len(cueNames) {
		return "unknown"
	}
	return cueNames[c]
}

// note is one tone of a cue. A zero frequency is a rest.
type note struct {
	freq float64
	ms   int
}

var melodies = map[Cue][]note{
	CueMove:     {{220, 15}},
	CueRotate:   {{330, 20}},
	CueDrop:     {{180, 25}, {120, 35}},
	CueLock:     {{150, 30}},
	CueClear:    {{523.25, 60}, {659.25, 60}},
	CueTetris:   {{523.25, 60}, {659.25, 60}, {783.99, 60}, {1046.5, 120}},
	CueCombo:    {{880, 40}, {0, 20}, {987.77, 50}},
	CueLevelUp:  {{392, 80}, {523.25, 80}, {659.25, 80}, {783.99, 160}},
	CueGameOver: {{392, 150}, {349.23, 150}, {293.66, 150}, {196, 400}},
	CueHold:     {{440, 25}, {554.37, 25}},
	CueGarbage:  {{98, 60}, {0, 20}, {98, 60}},
}

// CueFor maps a session event onto the cue it should play.
func CueFor(e tetris.Event) Cue {
	switch ev := e.(type) {
	case tetris.Moved:
		if ev.Soft {
			return CueNone
		}
		return CueMove
	case tetris.Rotated:
		return CueRotate
	case tetris.HardDropped:
		return CueDrop
	case tetris.Locked:
		if ev.LinesCleared == 0 {
			return CueLock
		}
		return CueNone // LineClear carries the sound
	case tetris.LineClear:
		if ev.Count >= 4 {
			return CueTetris
		}
		return CueClear
	case tetris.ComboChanged:
		if ev.Count >= 2 {
			return CueCombo
		}
	case tetris.LevelUp:
		return CueLevelUp
	case tetris.GameOver:
		return CueGameOver
	case tetris.Held:
		return CueHold
	case tetris.GarbageInserted:
		return CueGarbage
	}
	return CueNone
}
