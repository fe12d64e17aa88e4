package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// PlayerResult is one side's final line in a match result.
type PlayerResult struct {
	Session SessionID
	Name    string
	Score   int
	Lines   int
	Sent    int
}

// MatchResult is the outcome of a finished match.
type MatchResult struct {
	MatchID  MatchID
	Reason   MatchEndReason
	Winner   PlayerID
	Players  [2]PlayerResult
	Ticks    uint64
	Duration time.Duration // simulated time
}

// BattleMatch runs one Battle between two sessions on a fixed tick. Run owns
// the battle; other goroutines reach it only through SendInput, Leave and
// Stop.
type BattleMatch struct {
	id      MatchID
	code    string
	seed    int64
	players [2]SessionHandle
	battle  *Battle
	stepMs  int

	inputs   chan playerInput
	leaves   chan SessionID
	stop     chan struct{}
	stopOnce sync.Once
}

type playerInput struct {
	player PlayerID
	cmds   []tetris.Command
}

// NewBattleMatch prepares a match. Nothing runs until Run is called.
func NewBattleMatch(id MatchID, code string, cfg BattleConfig, p1, p2 SessionHandle, tickRate int) *BattleMatch {
	return &BattleMatch{
		id:      id,
		code:    code,
		seed:    cfg.Seed,
		players: [2]SessionHandle{p1, p2},
		battle:  NewBattle(cfg),
		stepMs:  max(1, 1000/max(tickRate, 1)),
		inputs:  make(chan playerInput, 64),
		leaves:  make(chan SessionID, 2),
		stop:    make(chan struct{}),
	}
}

func (m *BattleMatch) ID() MatchID  { return m.id }
func (m *BattleMatch) Code() string { return m.code }
func (m *BattleMatch) Seed() int64  { return m.seed }

// Player returns the session playing side p.
func (m *BattleMatch) Player(p PlayerID) SessionHandle {
	return m.players[p.Index()]
}

func (m *BattleMatch) sideOf(id SessionID) PlayerID {
	switch id {
	case m.players[0].ID():
		return Player1
	case m.players[1].ID():
		return Player2
	default:
		return NoPlayer
	}
}

// SendInput queues commands for the next tick. Input is dropped when the
// queue is full.
func (m *BattleMatch) SendInput(p PlayerID, cmds []tetris.Command) {
	if p != Player1 && p != Player2 {
		return
	}
	select {
	case m.inputs <- playerInput{player: p, cmds: cmds}:
	default:
	}
}

// Leave forfeits the match for the given session.
func (m *BattleMatch) Leave(id SessionID) {
	select {
	case m.leaves <- id:
	default:
	}
}

// Stop cancels the match without a winner.
func (m *BattleMatch) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Run steps the battle until a board tops out, a player leaves, or the match
// is stopped, broadcasting a snapshot after every tick.
func (m *BattleMatch) Run() MatchResult {
	ticker := time.NewTicker(time.Duration(m.stepMs) * time.Millisecond)
	defer ticker.Stop()

	var queued [2][]tetris.Command
	for {
		select {
		case in := <-m.inputs:
			i := in.player.Index()
			queued[i] = append(queued[i], in.cmds...)

		case id := <-m.leaves:
			if side := m.sideOf(id); side != NoPlayer {
				return m.result(MatchEndReasonDisconnect, side.Opponent())
			}

		case <-m.players[0].Done():
			return m.result(MatchEndReasonDisconnect, Player2)
		case <-m.players[1].Done():
			return m.result(MatchEndReasonDisconnect, Player1)

		case <-m.stop:
			return m.result(MatchEndReasonCancelled, NoPlayer)

		case <-ticker.C:
			m.battle.Step(queued, m.stepMs)
			queued[0], queued[1] = queued[0][:0], queued[1][:0]

			snap := m.battle.Snapshot()
			evt := SnapshotEvent{MatchID: m.id, Tick: snap.Tick, Snapshot: snap}
			m.players[0].Send(evt)
			m.players[1].Send(evt)

			if m.battle.Over() {
				return m.result(MatchEndReasonCompleted, m.battle.Winner())
			}
		}
	}
}

func (m *BattleMatch) result(reason MatchEndReason, winner PlayerID) MatchResult {
	snap := m.battle.Snapshot()
	r := MatchResult{
		MatchID:  m.id,
		Reason:   reason,
		Winner:   winner,
		Ticks:    snap.Tick,
		Duration: time.Duration(snap.Tick) * time.Duration(m.stepMs) * time.Millisecond,
	}
	for i := range r.Players {
		r.Players[i] = PlayerResult{
			Session: m.players[i].ID(),
			Name:    m.players[i].Name(),
			Score:   snap.Players[i].Score,
			Lines:   snap.Players[i].Lines,
			Sent:    snap.Sent[i],
		}
	}
	return r
}

// EndedEvent is the event both players receive for this result.
func (r MatchResult) EndedEvent() MatchEndedEvent {
	return MatchEndedEvent{
		MatchID: r.MatchID,
		Reason:  r.Reason,
		Winner:  r.Winner,
		Score1:  r.Players[0].Score,
		Score2:  r.Players[1].Score,
		Lines1:  r.Players[0].Lines,
		Lines2:  r.Players[1].Lines,
	}
}
