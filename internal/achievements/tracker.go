package achievements

import (
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Tracker watches a live session and reports each achievement once, the
// moment its threshold is crossed.
type Tracker struct {
	defs     []Definition
	unlocked map[string]bool
	progress progress
	fresh    []Definition
}

// NewTracker creates a tracker. IDs in already are treated as unlocked and
// never reported.
func NewTracker(defs []Definition, already []string) *Tracker {
	t := &Tracker{
		defs:     defs,
		unlocked: make(map[string]bool, len(already)),
	}
	for _, id := range already {
		t.unlocked[id] = true
	}
	return t
}

// Attach subscribes the tracker to a session's events.
func (t *Tracker) Attach(s *tetris.Session) {
	s.Subscribe(t.Observe)
}

// Observe updates progress from one event. It is a tetris.Observer.
func (t *Tracker) Observe(e tetris.Event) {
	switch ev := e.(type) {
	case tetris.LineClear:
		t.progress.lines += ev.Count
	case tetris.ComboChanged:
		t.progress.maxCombo = max(t.progress.maxCombo, ev.Count)
	case tetris.HardDropped:
		t.progress.hardDrops++
	case tetris.SessionReset:
		t.progress = progress{}
		return
	default:
		return
	}
	t.check()
}

func (t *Tracker) check() {
	for _, d := range t.defs {
		if t.unlocked[d.ID] || !d.reached(t.progress) {
			continue
		}
		t.unlocked[d.ID] = true
		t.fresh = append(t.fresh, d)
	}
}

// Drain returns achievements unlocked since the previous call.
func (t *Tracker) Drain() []Definition {
	out := t.fresh
	t.fresh = nil
	return out
}

// Unlocked reports whether id has been unlocked.
func (t *Tracker) Unlocked(id string) bool {
	return t.unlocked[id]
}
