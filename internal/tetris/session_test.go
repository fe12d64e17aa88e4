package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *[]Event) {
	t.Helper()
	s := NewSession(Options{Seed: 42})
	events := &[]Event{}
	s.Subscribe(func(e Event) { *events = append(*events, e) })
	return s, events
}

func eventsOfKind[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestNewSessionDefaults(t *testing.T) {
	s, _ := newTestSession(t)
	st := s.State()

	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 1000, st.Interval)
	assert.Len(t, st.Next, 3)
	assert.Equal(t, PieceNone, st.Hold)
	assert.False(t, st.IsPaused)
	assert.False(t, st.IsGameOver)
	assert.Equal(t, "classic", st.Mode)
	assert.True(t, st.Board.IsEmpty())
}

func TestNewSessionPanicsOnBoardMismatch(t *testing.T) {
	assert.Panics(t, func() { NewSession(Options{Rows: 22, Cols: 10}) })
	assert.Panics(t, func() { NewSession(Options{Cols: 12}) })
	assert.NotPanics(t, func() { NewSession(Options{Rows: BoardRows, Cols: BoardCols}) })
}

func TestPreviewCountHasFloorOfOne(t *testing.T) {
	rules := DefaultRules()
	rules.PreviewCount = 0
	s := NewSession(Options{Seed: 1, Rules: rules})
	assert.Len(t, s.State().Next, 1)
}

func TestHardDropEmptyBoard(t *testing.T) {
	s, _ := newTestSession(t)
	s.active = Piece{Type: PieceI, X: 3, Y: 0}

	require.True(t, s.ApplyCommand(CmdHardDrop))

	st := s.State()
	for x := 3; x <= 6; x++ {
		assert.Equal(t, PieceI.Cell(), st.Board[BoardRows-1][x], "column %d", x)
	}
	assert.Equal(t, (BoardRows-1)*2, st.Score)
	assert.Equal(t, 1, st.Stats.TotalPieces)
	assert.Equal(t, 1, st.Stats.HardDrops)
}

func TestComboScoring(t *testing.T) {
	s, events := newTestSession(t)

	setup := func() {
		s.board = Board{}
		fillRow(&s.board, BoardRows-1, 0, 1, 2, 3)
		s.board[BoardRows-2][9] = CellGarbage
		s.active = Piece{Type: PieceI, X: 0, Y: 0}
	}
	drop := (BoardRows - 1) * 2

	setup()
	before := s.State().Score
	s.ApplyCommand(CmdHardDrop)
	assert.Equal(t, drop+100, s.State().Score-before)
	assert.Equal(t, 1, s.State().Combo)

	setup()
	before = s.State().Score
	s.ApplyCommand(CmdHardDrop)
	assert.Equal(t, drop+150, s.State().Score-before)
	assert.Equal(t, 2, s.State().Combo)

	// a lock that clears nothing resets the combo
	s.board = Board{}
	s.active = Piece{Type: PieceO, X: 0, Y: 0}
	s.ApplyCommand(CmdHardDrop)
	assert.Equal(t, 0, s.State().Combo)

	combos := eventsOfKind[ComboChanged](*events)
	require.Len(t, combos, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{combos[0].Count, combos[1].Count, combos[2].Count})
	assert.Len(t, eventsOfKind[LineClear](*events), 2)
}

func TestTSpinZeroLines(t *testing.T) {
	s, events := newTestSession(t)
	s.board = Board{}
	s.board[BoardRows-1][1] = CellGarbage
	s.active = Piece{Type: PieceT, Rotation: 0, X: 0, Y: 17}

	require.True(t, s.ApplyCommand(CmdRotateCW))
	assert.Equal(t, Piece{Type: PieceT, Rotation: 1, X: 0, Y: 17}, s.active)

	before := s.State().Score
	s.ApplyCommand(CmdHardDrop)
	assert.Equal(t, 400, s.State().Score-before)

	locked := eventsOfKind[Locked](*events)
	require.Len(t, locked, 1)
	assert.True(t, locked[0].TSpin)
	assert.Zero(t, locked[0].LinesCleared)
	assert.Equal(t, 1, s.State().Stats.ClearCounts.TSpin)
}

func TestTSpinRequiresRotation(t *testing.T) {
	s, events := newTestSession(t)
	s.board = Board{}
	s.board[BoardRows-1][1] = CellGarbage
	s.active = Piece{Type: PieceT, Rotation: 1, X: 1, Y: 16}

	require.True(t, s.ApplyCommand(CmdMoveLeft))
	s.ApplyCommand(CmdHardDrop)

	locked := eventsOfKind[Locked](*events)
	require.Len(t, locked, 1)
	assert.False(t, locked[0].TSpin)
}

func TestGravityAfterRotationIsNotTSpin(t *testing.T) {
	s, events := newTestSession(t)
	s.board = Board{}
	s.board[BoardRows-1][1] = CellGarbage
	s.active = Piece{Type: PieceT, Rotation: 0, X: 0, Y: 14}

	require.True(t, s.ApplyCommand(CmdRotateCW))
	before := s.State().Score
	for range 10 {
		if len(eventsOfKind[Locked](*events)) > 0 {
			break
		}
		s.Tick(1000)
	}

	locked := eventsOfKind[Locked](*events)
	require.Len(t, locked, 1)
	assert.Equal(t, 17, locked[0].Piece.Y)
	assert.False(t, locked[0].TSpin)
	assert.Zero(t, s.State().Score-before)
	assert.Zero(t, s.State().Stats.ClearCounts.TSpin)
}

func TestPerfectClear(t *testing.T) {
	s, events := newTestSession(t)
	s.board = Board{}
	fillRow(&s.board, BoardRows-1, 0, 1, 2, 3)
	s.active = Piece{Type: PieceI, X: 0, Y: 0}

	before := s.State().Score
	s.ApplyCommand(CmdHardDrop)

	assert.Equal(t, (BoardRows-1)*2+100+1000, s.State().Score-before)
	assert.True(t, s.State().Board.IsEmpty())
	assert.Equal(t, 1, s.State().Stats.ClearCounts.PerfectClear)

	locked := eventsOfKind[Locked](*events)
	require.Len(t, locked, 1)
	assert.True(t, locked[0].PerfectClear)
}

func TestSpawnCollisionIsGameOver(t *testing.T) {
	s, events := newTestSession(t)
	fillRow(&s.board, 0)
	fillRow(&s.board, 1)

	require.True(t, s.ApplyCommand(CmdHold))

	st := s.State()
	assert.True(t, st.IsGameOver)
	assert.Equal(t, EndTopOut, st.Reason)
	over := eventsOfKind[GameOver](*events)
	require.Len(t, over, 1)
	assert.Equal(t, EndTopOut, over[0].Summary.Reason)
}

func TestSpawnCollisionAfterLock(t *testing.T) {
	s, events := newTestSession(t)
	fillRow(&s.board, 0, 0)
	fillRow(&s.board, 1, 0)
	s.active = Piece{Type: PieceO, X: 4, Y: 18}

	s.ApplyCommand(CmdHardDrop)

	st := s.State()
	require.Len(t, eventsOfKind[Locked](*events), 1)
	assert.Equal(t, PieceO.Cell(), st.Board[BoardRows-1][4])
	assert.True(t, st.IsGameOver)
	assert.Equal(t, EndTopOut, st.Reason)
	assert.Len(t, eventsOfKind[GameOver](*events), 1)
}

func TestCommandsIgnoredAfterGameOver(t *testing.T) {
	s, _ := newTestSession(t)
	fillRow(&s.board, 0)
	fillRow(&s.board, 1)
	s.ApplyCommand(CmdHold)
	require.Equal(t, StatusGameOver, s.Status())

	for _, cmd := range []Command{CmdMoveLeft, CmdMoveRight, CmdSoftDrop, CmdHardDrop, CmdRotateCW, CmdRotateCCW, CmdHold, CmdPause, CmdResume} {
		assert.False(t, s.ApplyCommand(cmd), cmd.String())
	}
	s.Tick(5000)
	assert.True(t, s.State().IsGameOver)

	require.True(t, s.ApplyCommand(CmdReset))
	st := s.State()
	assert.False(t, st.IsGameOver)
	assert.True(t, st.Board.IsEmpty())
	assert.Zero(t, st.Score)
}

func TestHoldOncePerDrop(t *testing.T) {
	s, _ := newTestSession(t)
	first := s.State().Active.Piece.Type
	upcoming := s.State().Next[0]

	require.True(t, s.ApplyCommand(CmdHold))
	st := s.State()
	assert.Equal(t, first, st.Hold)
	assert.Equal(t, SpawnPiece(upcoming), st.Active.Piece)
	assert.False(t, s.ApplyCommand(CmdHold), "second hold in the same drop")

	s.ApplyCommand(CmdHardDrop)
	current := s.State().Active.Piece.Type
	require.True(t, s.ApplyCommand(CmdHold))
	st = s.State()
	assert.Equal(t, SpawnPiece(first), st.Active.Piece, "swap restores held type at spawn pose")
	assert.Equal(t, current, st.Hold)
}

func TestHoldResetsRotationAndPosition(t *testing.T) {
	s, _ := newTestSession(t)
	s.ApplyCommand(CmdHold)
	s.ApplyCommand(CmdHardDrop)

	s.ApplyCommand(CmdRotateCW)
	s.ApplyCommand(CmdMoveLeft)
	s.ApplyCommand(CmdHold)

	p := s.State().Active.Piece
	assert.Equal(t, 0, p.Rotation)
	assert.Equal(t, (BoardCols-p.Width())/2, p.X)
	assert.Equal(t, 0, p.Y)
}

func TestGravityAndLockDelay(t *testing.T) {
	s, _ := newTestSession(t)
	s.active = Piece{Type: PieceO, X: 4, Y: 18}

	s.Tick(1000)
	assert.True(t, s.grounded)
	assert.Equal(t, 0, s.State().Stats.TotalPieces)

	s.Tick(400)
	require.True(t, s.ApplyCommand(CmdMoveLeft))
	s.Tick(400)
	assert.Equal(t, 0, s.State().Stats.TotalPieces, "move should restart lock delay")

	s.Tick(100)
	assert.Equal(t, 1, s.State().Stats.TotalPieces)
	assert.Equal(t, PieceO.Cell(), s.State().Board[BoardRows-1][3])
}

func TestGravityDropsOneRowPerInterval(t *testing.T) {
	s, _ := newTestSession(t)
	y := s.State().Active.Piece.Y

	s.Tick(999)
	assert.Equal(t, y, s.State().Active.Piece.Y)
	s.Tick(1)
	assert.Equal(t, y+1, s.State().Active.Piece.Y)
	s.Tick(1000)
	assert.Equal(t, y+2, s.State().Active.Piece.Y)
}

func TestPauseFreezesTime(t *testing.T) {
	s, _ := newTestSession(t)
	y := s.State().Active.Piece.Y
	s.Tick(600)

	require.True(t, s.ApplyCommand(CmdPause))
	assert.False(t, s.ApplyCommand(CmdPause))
	assert.False(t, s.ApplyCommand(CmdMoveLeft))
	s.Tick(60_000)
	assert.True(t, s.State().IsPaused)
	assert.Equal(t, y, s.State().Active.Piece.Y)

	require.True(t, s.ApplyCommand(CmdResume))
	s.Tick(300)
	assert.Equal(t, y, s.State().Active.Piece.Y, "paused time must not cause a drop")
	s.Tick(100)
	assert.Equal(t, y+1, s.State().Active.Piece.Y)
	assert.Equal(t, 1000, s.State().ElapsedMs)
}

func TestLevelUp(t *testing.T) {
	s, events := newTestSession(t)
	s.lines = 9
	s.board = Board{}
	fillRow(&s.board, BoardRows-1, 0, 1, 2, 3)
	s.board[BoardRows-2][9] = CellGarbage
	s.active = Piece{Type: PieceI, X: 0, Y: 0}

	s.ApplyCommand(CmdHardDrop)

	st := s.State()
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, 950, st.Interval)
	ups := eventsOfKind[LevelUp](*events)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].Level)
}

func TestSoftDrop(t *testing.T) {
	s, _ := newTestSession(t)
	y := s.State().Active.Piece.Y

	require.True(t, s.ApplyCommand(CmdSoftDrop))
	assert.Equal(t, y+1, s.State().Active.Piece.Y)
	assert.Equal(t, 1, s.State().Score)
	assert.Equal(t, 1000, s.State().Interval)

	s.active = Piece{Type: PieceO, X: 4, Y: 18}
	assert.False(t, s.ApplyCommand(CmdSoftDrop))
	assert.Equal(t, 1, s.State().Score)
}

func TestMoveBlockedByWall(t *testing.T) {
	s, _ := newTestSession(t)
	s.active = Piece{Type: PieceO, X: 0, Y: 5}
	assert.False(t, s.ApplyCommand(CmdMoveLeft))
	assert.True(t, s.ApplyCommand(CmdMoveRight))
	assert.Equal(t, ActionMove, s.State().LastAction)
}

func TestInsertGarbageRowsSession(t *testing.T) {
	s, events := newTestSession(t)

	assert.Equal(t, 0, s.InsertGarbageRows(-1, 1))
	assert.Equal(t, 2, s.InsertGarbageRows(2, 1))
	st := s.State()
	assert.Equal(t, CellGarbage, st.Board[BoardRows-1][firstFilled(st.Board[BoardRows-1])])
	assert.False(t, st.IsGameOver)

	g := eventsOfKind[GarbageInserted](*events)
	require.Len(t, g, 1)
	assert.Equal(t, GarbageInserted{Count: 2, Holes: 1}, g[0])

	assert.Equal(t, BoardRows, s.InsertGarbageRows(100, 1))
	assert.True(t, s.State().IsGameOver, "garbage reaching the active piece tops out")
}

func firstFilled(row [BoardCols]Cell) int {
	for x, c := range row {
		if !c.IsEmpty() {
			return x
		}
	}
	return -1
}

func TestGarbageDoesNotShiftPieceSequence(t *testing.T) {
	a := NewSession(Options{Seed: 7})
	b := NewSession(Options{Seed: 7})
	b.InsertGarbageRows(3, 1)

	for range 5 {
		a.ApplyCommand(CmdHardDrop)
		b.ApplyCommand(CmdHardDrop)
		assert.Equal(t, a.State().Next, b.State().Next)
	}
}

func TestDeterministicReplayOfCommands(t *testing.T) {
	script := []Command{
		CmdMoveLeft, CmdRotateCW, CmdHardDrop, CmdHold, CmdMoveRight, CmdMoveRight,
		CmdSoftDrop, CmdHardDrop, CmdRotateCCW, CmdHardDrop, CmdHold, CmdHardDrop,
	}
	run := func() Snapshot {
		s := NewSession(Options{Seed: 2024})
		for i, cmd := range script {
			s.ApplyCommand(cmd)
			s.Tick(16 * (i + 1))
		}
		return s.State()
	}
	assert.Equal(t, run(), run())
}

func TestModeTargetLines(t *testing.T) {
	s := NewSession(Options{Seed: 3, Mode: Mode{ID: "sprint", TargetLines: 1}})
	s.board = Board{}
	fillRow(&s.board, BoardRows-1, 0, 1, 2, 3)
	s.board[BoardRows-2][9] = CellGarbage
	s.active = Piece{Type: PieceI, X: 0, Y: 0}

	s.ApplyCommand(CmdHardDrop)
	st := s.State()
	assert.True(t, st.IsGameOver)
	assert.Equal(t, EndCompleted, st.Reason)
}

func TestModeTimeLimit(t *testing.T) {
	s := NewSession(Options{Seed: 3, Mode: Mode{ID: "ultra", TimeLimitMs: 1500}})
	s.Tick(1000)
	assert.False(t, s.State().IsGameOver)
	assert.Equal(t, 500, s.State().RemainingMs(s.Mode()))
	s.Tick(500)
	assert.True(t, s.State().IsGameOver)
	assert.Equal(t, EndTimeUp, s.State().Reason)
}

func TestGravity20DropsToFloor(t *testing.T) {
	rules := DefaultRules()
	s := NewSession(Options{Seed: 3, Rules: rules, Mode: Mode{ID: "master", Gravity20: true}})
	s.active = Piece{Type: PieceO, X: 4, Y: 0}

	s.Tick(16)
	assert.Equal(t, BoardRows-2, s.State().Active.Piece.Y)
	assert.Zero(t, s.State().Score)
}

func TestResetEmitsSummary(t *testing.T) {
	s, events := newTestSession(t)
	s.ApplyCommand(CmdSoftDrop)
	s.ApplyCommand(CmdReset)

	resets := eventsOfKind[SessionReset](*events)
	require.Len(t, resets, 1)
	assert.Equal(t, EndReset, resets[0].Summary.Reason)
	assert.Equal(t, 1, resets[0].Summary.Score)
	assert.Zero(t, s.State().Score)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestSession(t)
	st := s.State()
	st.Board[BoardRows-1][0] = CellGarbage
	st.Next[0] = PieceNone
	st.Stats.PieceStats[PieceI] = 99

	again := s.State()
	assert.True(t, again.Board.IsEmpty())
	assert.NotEqual(t, PieceNone, again.Next[0])
	assert.Zero(t, again.Stats.PieceStats[PieceI])
}
