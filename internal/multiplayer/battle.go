package multiplayer

import (
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// BattleMode is the engine mode both boards of a battle run in.
var BattleMode = tetris.Mode{
	ID:          BattleModeID,
	Title:       "Battle",
	Description: "Two boards, cleared lines become the opponent's garbage",
}

// GarbageFor returns the garbage rows a clearing lock sends, before the
// multiplier and cancellation are applied.
func GarbageFor(lines int, tSpin, perfect bool) int {
	if lines <= 0 {
		return 0
	}

	n := 0
	if tSpin {
		n = 2 * lines
	} else {
		switch lines {
		case 2:
			n = 1
		case 3:
			n = 2
		case 4:
			n = 4
		}
	}
	if perfect {
		n += 10
	}
	return n
}

// BattleConfig configures a new battle.
type BattleConfig struct {
	Seed              int64
	Rules             tetris.Rules
	GarbageMultiplier int // <1 means 1
}

// BattleSnapshot is the broadcast view of both boards after a tick.
type BattleSnapshot struct {
	Tick    uint64             `json:"tick"`
	Players [2]tetris.Snapshot `json:"players"`
	Pending [2]int             `json:"pending"` // incoming garbage not yet inserted
	Sent    [2]int             `json:"sent"`    // garbage rows sent so far
}

// For returns the player's own board and the opponent's, in that order.
func (s BattleSnapshot) For(p PlayerID) (own, opponent tetris.Snapshot) {
	if p == Player2 {
		return s.Players[1], s.Players[0]
	}
	return s.Players[0], s.Players[1]
}

// Battle is the deterministic two-board simulation. Both sessions share a
// seed so they see the same piece sequence. It is driven by a single
// goroutine.
type Battle struct {
	players [2]*tetris.Session
	pending [2]int
	sent    [2]int
	mult    int
	ticks   uint64
}

// NewBattle creates a battle with both boards running.
func NewBattle(cfg BattleConfig) *Battle {
	b := &Battle{mult: max(cfg.GarbageMultiplier, 1)}
	for i := range b.players {
		s := tetris.NewSession(tetris.Options{
			Seed:  cfg.Seed,
			Mode:  BattleMode,
			Rules: cfg.Rules,
		})
		from := i
		s.Subscribe(func(e tetris.Event) {
			if l, ok := e.(tetris.Locked); ok && l.LinesCleared > 0 {
				b.route(from, GarbageFor(l.LinesCleared, l.TSpin, l.PerfectClear)*b.mult)
			}
		})
		b.players[i] = s
	}
	return b
}

// route cancels outgoing garbage against the sender's own pending garbage and
// queues the rest for the opponent.
func (b *Battle) route(from, n int) {
	if n <= 0 {
		return
	}
	cancel := min(n, b.pending[from])
	b.pending[from] -= cancel
	n -= cancel
	if n > 0 {
		b.pending[1-from] += n
		b.sent[from] += n
	}
}

// Step advances both boards by one tick: pending garbage is inserted, queued
// commands are applied in order, then both sessions tick by deltaMs.
func (b *Battle) Step(cmds [2][]tetris.Command, deltaMs int) {
	for i, s := range b.players {
		if b.pending[i] == 0 || s.Status() == tetris.StatusGameOver {
			continue
		}
		b.pending[i] -= s.InsertGarbageRows(min(b.pending[i], tetris.BoardRows), 1)
	}

	for i, s := range b.players {
		for _, cmd := range cmds[i] {
			if battleCommand(cmd) {
				s.ApplyCommand(cmd)
			}
		}
	}

	for _, s := range b.players {
		s.Tick(deltaMs)
	}
	b.ticks++
}

// battleCommand reports whether a player may issue cmd mid-battle.
// Pausing or resetting one board would stall the other player.
func battleCommand(cmd tetris.Command) bool {
	switch cmd {
	case tetris.CmdPause, tetris.CmdResume, tetris.CmdReset, tetris.CmdNone:
		return false
	default:
		return true
	}
}

// Over reports whether either board has ended.
func (b *Battle) Over() bool {
	return b.players[0].Status() == tetris.StatusGameOver ||
		b.players[1].Status() == tetris.StatusGameOver
}

// Winner returns the surviving player, or NoPlayer while running or when both
// boards ended on the same tick.
func (b *Battle) Winner() PlayerID {
	over1 := b.players[0].Status() == tetris.StatusGameOver
	over2 := b.players[1].Status() == tetris.StatusGameOver
	switch {
	case over1 && !over2:
		return Player2
	case over2 && !over1:
		return Player1
	default:
		return NoPlayer
	}
}

// Session returns a player's engine session.
func (b *Battle) Session(p PlayerID) *tetris.Session {
	return b.players[p.Index()]
}

// Pending returns the garbage rows waiting to be inserted into p's board.
func (b *Battle) Pending(p PlayerID) int {
	return b.pending[p.Index()]
}

// Ticks returns the number of completed steps.
func (b *Battle) Ticks() uint64 {
	return b.ticks
}

// Snapshot captures both boards.
func (b *Battle) Snapshot() BattleSnapshot {
	return BattleSnapshot{
		Tick:    b.ticks,
		Players: [2]tetris.Snapshot{b.players[0].State(), b.players[1].State()},
		Pending: b.pending,
		Sent:    b.sent,
	}
}
