package tetris

// Event is emitted by a Session, synchronously and in order, to every
// subscriber.
type Event interface {
	Kind() string
}

// Observer receives session events.
type Observer func(Event)

// Moved is emitted after a successful translation, including soft drops.
type Moved struct {
	Piece  Piece
	DX, DY int
	Soft   bool
}

// Rotated is emitted after a successful rotation.
type Rotated struct {
	Piece Piece
	Dir   int
	Kick  Kick
}

// HardDropped is emitted before the forced lock of a hard drop.
type HardDropped struct {
	Piece Piece
	Cells int
}

// Held is emitted when the hold slot changes.
type Held struct {
	Held   PieceType
	Active PieceType
}

// Spawned is emitted whenever a new active piece is installed.
type Spawned struct {
	Piece Piece
}

// Locked is emitted when a piece merges into the board.
type Locked struct {
	Piece        Piece
	TSpin        bool
	LinesCleared int
	PerfectClear bool
	BackToBack   bool
	Points       int
}

// LineClear is emitted after a lock that removed at least one row.
type LineClear struct {
	Count int
}

// ComboChanged is emitted whenever the combo counter changes value.
type ComboChanged struct {
	Count int
}

// LevelUp is emitted when the level increases.
type LevelUp struct {
	Level    int
	Interval int
}

// GarbageInserted is emitted after external rows are pushed into the board.
type GarbageInserted struct {
	Count int
	Holes int
}

// Paused is emitted when the session enters the paused state.
type Paused struct{}

// Resumed is emitted when the session leaves the paused state.
type Resumed struct{}

// CommandApplied is emitted for every command passed to ApplyCommand,
// whether or not it had an effect.
type CommandApplied struct {
	Command  Command
	Accepted bool
}

// Ticked is emitted at the end of every Tick call.
type Ticked struct {
	ElapsedMs int
}

// GameOver is emitted once when the session ends.
type GameOver struct {
	Summary Summary
}

// SessionReset is emitted when a reset discards the running session.
type SessionReset struct {
	Summary Summary
}

func (Moved) Kind() string           { return "moved" }
func (Rotated) Kind() string         { return "rotated" }
func (HardDropped) Kind() string     { return "hardDropped" }
func (Held) Kind() string            { return "held" }
func (Spawned) Kind() string         { return "spawned" }
func (Locked) Kind() string          { return "locked" }
func (LineClear) Kind() string       { return "lineClear" }
func (ComboChanged) Kind() string    { return "comboChanged" }
func (LevelUp) Kind() string         { return "levelUp" }
func (GarbageInserted) Kind() string { return "garbageInserted" }
func (Paused) Kind() string          { return "paused" }
func (Resumed) Kind() string         { return "resumed" }
func (CommandApplied) Kind() string  { return "commandApplied" }
func (Ticked) Kind() string          { return "ticked" }
func (GameOver) Kind() string        { return "gameOver" }
func (SessionReset) Kind() string    { return "reset" }
