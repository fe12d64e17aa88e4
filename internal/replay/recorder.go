package replay

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Recorder builds a Replay from a session's event stream. It never mutates
// the session; it only reads snapshots to annotate frames.
type Recorder struct {
	session *tetris.Session
	rules   *tetris.Rules
	replay  Replay
	pending Frame
	clock   int
	over    bool

	now func() time.Time
}

// NewRecorder creates a recorder. rules is stored in the replay so playback
// uses the same timing and scoring; nil means the defaults.
func NewRecorder(rules *tetris.Rules) *Recorder {
	return &Recorder{rules: rules, now: time.Now}
}

// Attach starts recording s and subscribes to its events.
func (r *Recorder) Attach(s *tetris.Session) {
	r.session = s
	r.start()
	s.Subscribe(r.observe)
}

func (r *Recorder) start() {
	r.replay = Replay{
		Version:   Version,
		ID:        uuid.NewString(),
		Seed:      r.session.Seed(),
		GameMode:  r.session.Mode().ID,
		CreatedAt: r.now().UTC(),
		Rules:     r.rules,
		Mode:      modeSettingsOf(r.session.Mode()),
		Frames:    []Frame{},
	}
	r.pending = Frame{}
	r.clock = 0
	r.over = false
}

func (r *Recorder) observe(e tetris.Event) {
	switch ev := e.(type) {
	case tetris.CommandApplied:
		// rejected commands have no effect and reset starts a new recording
		if !ev.Accepted || ev.Command == tetris.CmdReset {
			return
		}
		r.pending.Commands = append(r.pending.Commands, ev.Command.String())

	case tetris.GarbageInserted:
		if len(r.pending.Commands) > 0 {
			r.closeFrame(true)
		}
		r.pending.Garbage = append(r.pending.Garbage, GarbageEntry{Count: ev.Count, Holes: ev.Holes})

	case tetris.Ticked:
		r.clock += ev.ElapsedMs
		r.closeFrame(false)

	case tetris.GameOver:
		r.over = true
		r.replay.FinalScore = ev.Summary.Score
		stats := ev.Summary.Stats
		r.replay.Statistics = &stats

	case tetris.SessionReset:
		r.start()
	}
}

func (r *Recorder) closeFrame(noTick bool) {
	f := r.pending
	f.TimestampMs = r.clock
	f.NoTick = noTick
	if f.Commands == nil {
		f.Commands = []string{}
	}
	f.State = frameStateOf(r.session.State())
	r.replay.Frames = append(r.replay.Frames, f)
	r.pending = Frame{}
}

// Frames returns the number of closed frames so far.
func (r *Recorder) Frames() int {
	return len(r.replay.Frames)
}

// Finished reports whether the recorded session has ended.
func (r *Recorder) Finished() bool {
	return r.over
}

// Finish flushes pending input and returns the replay recorded so far.
// The recorder can keep recording afterwards.
func (r *Recorder) Finish() *Replay {
	if len(r.pending.Commands) > 0 || len(r.pending.Garbage) > 0 {
		r.closeFrame(true)
	}

	out := r.replay
	out.Frames = append([]Frame(nil), r.replay.Frames...)
	out.DurationMs = r.clock
	if !r.over {
		st := r.session.State()
		out.FinalScore = st.Score
		stats := st.Stats
		out.Statistics = &stats
	}
	return &out
}
