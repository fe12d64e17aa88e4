package tetris

import (
	"fmt"
	"math/rand"
)

// Status is the top-level state of a session.
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusGameOver
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// garbageSeedSalt separates the hole generator from the piece generator so
// that garbage never shifts the piece sequence.
const garbageSeedSalt = 0x5DEECE66D

// Options configures a new Session.
type Options struct {
	Seed  int64
	Mode  Mode
	Rules Rules
	// Rows and Cols are optional. Any non-zero value must match the board
	// constants.
	Rows, Cols int
}

// Session is the game state machine. It is not safe for concurrent use; a
// single driver calls Tick and ApplyCommand serially.
type Session struct {
	opts  Options
	rules Rules
	mode  Mode

	board      Board
	bag        *Bag
	garbageRng *rand.Rand

	active   Piece
	next     []PieceType
	hold     PieceType
	holdUsed bool
	last     LastAction

	score int
	level int
	lines int
	combo int
	b2b   bool

	interval  int
	dropAccum int
	lockTimer int
	grounded  bool
	elapsed   int

	status Status
	reason EndReason
	stats  Stats

	observers []Observer
}

// NewSession creates a running session. It panics when opts asks for board
// dimensions other than BoardRows x BoardCols.
func NewSession(opts Options) *Session {
	if (opts.Rows != 0 && opts.Rows != BoardRows) || (opts.Cols != 0 && opts.Cols != BoardCols) {
		panic(fmt.Sprintf("tetris: board %dx%d does not match %dx%d", opts.Rows, opts.Cols, BoardRows, BoardCols))
	}
	if opts.Mode.ID == "" {
		opts.Mode = ClassicMode
	}
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	s := &Session{opts: opts}
	s.init()
	return s
}

// init rebuilds every piece of per-game state from the options.
func (s *Session) init() {
	s.rules = s.opts.Rules.normalized()
	s.mode = s.opts.Mode
	s.board = Board{}
	s.bag = NewBag(s.opts.Seed)
	s.garbageRng = rand.New(rand.NewSource(s.opts.Seed ^ garbageSeedSalt))
	s.hold = PieceNone
	s.holdUsed = false
	s.score, s.lines, s.combo = 0, 0, 0
	s.b2b = false
	s.level = s.rules.Level(0)
	s.interval = s.rules.DropInterval(s.level)
	s.elapsed = 0
	s.status = StatusRunning
	s.reason = EndNone
	s.stats = newStats()

	first := s.bag.Next()
	s.next = make([]PieceType, s.rules.PreviewCount)
	for i := range s.next {
		s.next[i] = s.bag.Next()
	}
	s.spawn(first)
}

// Subscribe registers an observer for every subsequent event.
func (s *Session) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Session) emit(e Event) {
	for _, o := range s.observers {
		o(e)
	}
}

// Status returns the current state.
func (s *Session) Status() Status { return s.status }

// Mode returns the session's mode.
func (s *Session) Mode() Mode { return s.mode }

// Seed returns the seed the session was created with.
func (s *Session) Seed() int64 { return s.opts.Seed }

// Tick advances gravity and lock delay by elapsedMs. It does nothing unless
// the session is running.
func (s *Session) Tick(elapsedMs int) {
	if s.status != StatusRunning {
		return
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	s.elapsed += elapsedMs
	s.step(elapsedMs)

	if s.status == StatusRunning && s.mode.TimeLimitMs > 0 && s.elapsed >= s.mode.TimeLimitMs {
		s.end(EndTimeUp)
	}
	s.emit(Ticked{ElapsedMs: elapsedMs})
}

func (s *Session) step(elapsed int) {
	if s.grounded {
		if Collides(s.board, s.active, 0, 1) {
			s.lockTimer += elapsed
			if s.lockTimer >= s.rules.LockDelay {
				s.lockActive()
			}
			return
		}
		// the floor went away under the piece
		s.grounded = false
		s.lockTimer = 0
	}

	if s.mode.Gravity20 || s.interval <= 0 {
		if d := s.dropDistance(); d > 0 {
			s.active = s.active.Moved(0, d)
			s.last = ActionMove
			s.emit(Moved{Piece: s.active, DY: d})
		}
		s.grounded = true
		s.lockTimer = 0
		return
	}

	// gravity fires once the accumulator reaches the interval, so a tick of
	// exactly one interval moves the piece one row
	s.dropAccum += elapsed
	if s.dropAccum < s.interval {
		return
	}
	s.dropAccum = 0
	if Collides(s.board, s.active, 0, 1) {
		s.grounded = true
		s.lockTimer = 0
		return
	}
	s.active = s.active.Moved(0, 1)
	s.last = ActionMove
	s.grounded = Collides(s.board, s.active, 0, 1)
	s.emit(Moved{Piece: s.active, DY: 1})
}

// ApplyCommand applies one logical command and reports whether it changed
// anything. Commands that make no sense in the current state are ignored.
func (s *Session) ApplyCommand(cmd Command) bool {
	ok := s.apply(cmd)
	s.emit(CommandApplied{Command: cmd, Accepted: ok})
	return ok
}

func (s *Session) apply(cmd Command) bool {
	switch cmd {
	case CmdReset:
		s.reset()
		return true
	case CmdPause:
		if s.status != StatusRunning {
			return false
		}
		s.status = StatusPaused
		s.emit(Paused{})
		return true
	case CmdResume:
		if s.status != StatusPaused {
			return false
		}
		// accumulators were frozen while paused, so no time is owed
		s.status = StatusRunning
		s.emit(Resumed{})
		return true
	}

	if s.status != StatusRunning {
		return false
	}

	switch cmd {
	case CmdMoveLeft:
		return s.shift(-1)
	case CmdMoveRight:
		return s.shift(1)
	case CmdSoftDrop:
		return s.softDrop()
	case CmdHardDrop:
		s.hardDrop()
		return true
	case CmdRotateCW:
		return s.rotate(1)
	case CmdRotateCCW:
		return s.rotate(-1)
	case CmdHold:
		return s.holdPiece()
	default:
		return false
	}
}

func (s *Session) shift(dx int) bool {
	if Collides(s.board, s.active, dx, 0) {
		return false
	}
	s.active = s.active.Moved(dx, 0)
	s.last = ActionMove
	s.afterManipulation()
	s.emit(Moved{Piece: s.active, DX: dx})
	return true
}

func (s *Session) softDrop() bool {
	if Collides(s.board, s.active, 0, 1) {
		return false
	}
	s.active = s.active.Moved(0, 1)
	s.score += s.rules.SoftDropPoints
	s.last = ActionMove
	s.afterManipulation()
	s.emit(Moved{Piece: s.active, DY: 1, Soft: true})
	return true
}

func (s *Session) hardDrop() {
	d := s.dropDistance()
	if d > 0 {
		s.active = s.active.Moved(0, d)
		s.last = ActionMove
	}
	s.score += d * s.rules.HardDropPoints
	s.stats.HardDrops++
	s.emit(HardDropped{Piece: s.active, Cells: d})
	s.lockActive()
}

func (s *Session) rotate(dir int) bool {
	p, kick, ok := TryRotate(s.board, s.active, dir)
	if !ok {
		return false
	}
	s.active = p
	s.last = ActionRotate
	s.afterManipulation()
	s.emit(Rotated{Piece: p, Dir: dir, Kick: kick})
	return true
}

// afterManipulation refreshes the grounded flag and restarts the lock delay.
// Resets are not capped.
func (s *Session) afterManipulation() {
	s.grounded = Collides(s.board, s.active, 0, 1)
	s.lockTimer = 0
}

func (s *Session) holdPiece() bool {
	if s.holdUsed {
		return false
	}
	current := s.active.Type
	var incoming PieceType
	if s.hold == PieceNone {
		incoming = s.popNext()
	} else {
		incoming = s.hold
	}
	s.hold = current
	s.holdUsed = true
	s.emit(Held{Held: current, Active: incoming})
	s.spawn(incoming)
	return true
}

func (s *Session) dropDistance() int {
	d := 0
	for !Collides(s.board, s.active, 0, d+1) {
		d++
	}
	return d
}

func (s *Session) popNext() PieceType {
	t := s.next[0]
	copy(s.next, s.next[1:])
	s.next[len(s.next)-1] = s.bag.Next()
	return t
}

// spawn installs t as the active piece and tops out when the spawn pose is
// already blocked.
func (s *Session) spawn(t PieceType) {
	s.active = SpawnPiece(t)
	s.last = ActionNone
	s.dropAccum = 0
	s.lockTimer = 0
	s.grounded = false
	if Collides(s.board, s.active, 0, 0) {
		s.end(EndTopOut)
		return
	}
	s.emit(Spawned{Piece: s.active})
}

// lockActive merges the active piece, scores the lock and spawns the next
// piece.
func (s *Session) lockActive() {
	p := s.active
	tSpin := IsTSpin(s.board, p, s.last)

	board, lines := Lock(s.board, p)
	s.board = board
	perfect := lines > 0 && board.IsEmpty()

	s.stats.TotalPieces++
	s.stats.PieceStats[p.Type]++

	prevCombo := s.combo
	if lines > 0 {
		s.combo++
	} else {
		s.combo = 0
	}

	pts := s.rules.ScoreLock(s.level, lines, tSpin, perfect, s.combo, s.b2b)
	if lines > 0 {
		s.b2b = IsDifficult(lines, tSpin)
	}
	s.score += pts.Total()
	s.lines += lines

	s.stats.TotalLines = s.lines
	s.stats.MaxCombo = max(s.stats.MaxCombo, s.combo)
	if lines > 0 || tSpin {
		s.stats.recordClear(lines, tSpin, perfect)
	}

	s.emit(Locked{
		Piece:        p,
		TSpin:        tSpin,
		LinesCleared: lines,
		PerfectClear: perfect,
		BackToBack:   pts.BackToBack,
		Points:       pts.Total(),
	})
	if lines > 0 {
		s.emit(LineClear{Count: lines})
	}
	if s.combo != prevCombo {
		s.emit(ComboChanged{Count: s.combo})
	}

	if lvl := s.rules.Level(s.lines); lvl > s.level {
		s.level = lvl
		s.interval = s.rules.DropInterval(lvl)
		s.emit(LevelUp{Level: lvl, Interval: s.interval})
	}

	if s.mode.TargetLines > 0 && s.lines >= s.mode.TargetLines {
		s.end(EndCompleted)
		return
	}

	s.holdUsed = false
	s.spawn(s.popNext())
}

// InsertGarbageRows pushes count garbage rows in from the bottom, each with
// holesPerRow holes. Arguments are clamped. It returns the number of rows
// inserted and ends the game if the active piece now overlaps the stack.
func (s *Session) InsertGarbageRows(count, holesPerRow int) int {
	if s.status == StatusGameOver {
		return 0
	}
	count = clamp(count, 0, BoardRows)
	if count == 0 {
		return 0
	}
	holesPerRow = clamp(holesPerRow, 1, BoardCols-1)

	s.board = InsertGarbage(s.board, count, holesPerRow, s.garbageRng)
	s.emit(GarbageInserted{Count: count, Holes: holesPerRow})

	if Collides(s.board, s.active, 0, 0) {
		s.end(EndTopOut)
		return count
	}
	s.grounded = Collides(s.board, s.active, 0, 1)
	return count
}

func (s *Session) end(reason EndReason) {
	s.status = StatusGameOver
	s.reason = reason
	s.emit(GameOver{Summary: s.Summary()})
}

func (s *Session) reset() {
	sum := s.Summary()
	if s.status != StatusGameOver {
		sum.Reason = EndReset
	}
	s.emit(SessionReset{Summary: sum})
	s.init()
}

// Summary returns the finalized view of the session so far.
func (s *Session) Summary() Summary {
	return Summary{
		Mode:       s.mode.ID,
		Seed:       s.opts.Seed,
		Score:      s.score,
		Level:      s.level,
		Lines:      s.lines,
		DurationMs: s.elapsed,
		Reason:     s.reason,
		Stats:      s.stats.clone(),
	}
}
