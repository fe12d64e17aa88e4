package replay

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// DesyncError reports the first frame whose recorded state differs from the
// re-simulated one.
type DesyncError struct {
	Frame int
	Field string
	Want  any
	Got   any
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("replay: desync at frame %d: %s recorded %v, simulated %v", e.Frame, e.Field, e.Want, e.Got)
}

// Player re-runs a replay through a fresh session one frame at a time.
type Player struct {
	replay  *Replay
	session *tetris.Session
	frame   int
	clock   int
	verify  bool
}

// NewPlayer validates r and builds the session it will drive. Validation
// happens before any session exists.
func NewPlayer(r *Replay, verify bool) (*Player, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	mode, err := registry.Get(r.GameMode)
	if err != nil {
		return nil, &ReplayFormatError{Field: "gameMode", Reason: "unknown mode", Err: err}
	}
	rules := tetris.DefaultRules()
	if r.Rules != nil {
		rules = *r.Rules
	}

	return &Player{
		replay:  r,
		session: tetris.NewSession(tetris.Options{Seed: r.Seed, Mode: r.Mode.apply(mode), Rules: rules}),
		verify:  verify,
	}, nil
}

// Session returns the session being driven, for rendering.
func (p *Player) Session() *tetris.Session { return p.session }

// Done reports whether every frame has been applied.
func (p *Player) Done() bool { return p.frame >= len(p.replay.Frames) }

// Progress returns the number of applied frames and the total.
func (p *Player) Progress() (int, int) { return p.frame, len(p.replay.Frames) }

// NextTimestamp returns the timestamp of the next frame, or -1 when done.
func (p *Player) NextTimestamp() int {
	if p.Done() {
		return -1
	}
	return p.replay.Frames[p.frame].TimestampMs
}

// Step applies one frame.
func (p *Player) Step() error {
	if p.Done() {
		return nil
	}
	f := p.replay.Frames[p.frame]
	idx := p.frame
	p.frame++

	for _, g := range f.Garbage {
		p.session.InsertGarbageRows(g.Count, g.Holes)
	}
	for _, name := range f.Commands {
		cmd, _ := tetris.ParseCommand(name)
		p.session.ApplyCommand(cmd)
	}
	if !f.NoTick {
		p.session.Tick(f.TimestampMs - p.clock)
	}
	p.clock = f.TimestampMs

	if p.verify && f.State != nil {
		return compareState(idx, *f.State, p.session.State())
	}
	return nil
}

// Run applies every remaining frame and returns the final summary.
func (p *Player) Run() (tetris.Summary, error) {
	for !p.Done() {
		if err := p.Step(); err != nil {
			return p.session.Summary(), err
		}
	}
	sum := p.session.Summary()
	if p.verify && sum.Score != p.replay.FinalScore {
		return sum, &DesyncError{Frame: len(p.replay.Frames), Field: "finalScore", Want: p.replay.FinalScore, Got: sum.Score}
	}
	return sum, nil
}

// Play validates and fully re-simulates r.
func Play(r *Replay, verify bool) (tetris.Summary, error) {
	p, err := NewPlayer(r, verify)
	if err != nil {
		return tetris.Summary{}, err
	}
	return p.Run()
}

func compareState(frame int, want FrameState, st tetris.Snapshot) error {
	got := frameStateOf(st)
	switch {
	case want.Score != got.Score:
		return &DesyncError{frame, "score", want.Score, got.Score}
	case want.Lines != got.Lines:
		return &DesyncError{frame, "lines", want.Lines, got.Lines}
	case want.Level != got.Level:
		return &DesyncError{frame, "level", want.Level, got.Level}
	case want.Combo != got.Combo:
		return &DesyncError{frame, "combo", want.Combo, got.Combo}
	case want.Active != got.Active:
		return &DesyncError{frame, "active", want.Active, got.Active}
	case want.Hold != got.Hold:
		return &DesyncError{frame, "hold", want.Hold, got.Hold}
	case !slices.Equal(want.Next, got.Next):
		return &DesyncError{frame, "next", want.Next, got.Next}
	case want.Over != got.Over:
		return &DesyncError{frame, "gameOver", want.Over, got.Over}
	}
	return nil
}
