// Package replay records sessions as command streams and plays them back
// through a fresh engine.
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Version is the replay format version written by this package.
const Version = 1

// Replay is a recorded session.
type Replay struct {
	Version    int           `json:"version"`
	ID         string        `json:"id,omitempty"`
	Seed       int64         `json:"seed"`
	GameMode   string        `json:"gameMode"`
	CreatedAt  time.Time     `json:"createdAt"`
	Rules      *tetris.Rules `json:"rules,omitempty"`
	Mode       *ModeSettings `json:"mode,omitempty"`
	Frames     []Frame       `json:"frames"`
	FinalScore int           `json:"finalScore"`
	DurationMs int           `json:"durationMs"`
	Statistics *tetris.Stats `json:"statistics,omitempty"`
}

// ModeSettings are the end conditions the recorded session ran with, after
// config overrides. Without them playback uses the registered mode.
type ModeSettings struct {
	TargetLines int  `json:"targetLines,omitempty"`
	TimeLimitMs int  `json:"timeLimitMs,omitempty"`
	Gravity20   bool `json:"gravity20,omitempty"`
}

func modeSettingsOf(m tetris.Mode) *ModeSettings {
	return &ModeSettings{TargetLines: m.TargetLines, TimeLimitMs: m.TimeLimitMs, Gravity20: m.Gravity20}
}

// apply returns m with the recorded end conditions.
func (ms *ModeSettings) apply(m tetris.Mode) tetris.Mode {
	if ms == nil {
		return m
	}
	m.TargetLines = ms.TargetLines
	m.TimeLimitMs = ms.TimeLimitMs
	m.Gravity20 = ms.Gravity20
	return m
}

// Frame is everything that happened up to and including one tick.
// Garbage is applied first, then commands, then the tick.
type Frame struct {
	TimestampMs int            `json:"timestampMs"`
	Garbage     []GarbageEntry `json:"garbage,omitempty"`
	Commands    []string       `json:"commands"`
	NoTick      bool           `json:"noTick,omitempty"` // closed without a tick
	State       *FrameState    `json:"state,omitempty"`
}

// GarbageEntry is one InsertGarbageRows call.
type GarbageEntry struct {
	Count int `json:"count"`
	Holes int `json:"holes"`
}

// FrameState is the derivable state after a frame, kept for verification.
type FrameState struct {
	Active tetris.Piece       `json:"active"`
	Hold   tetris.PieceType   `json:"hold"`
	Next   []tetris.PieceType `json:"next"`
	Score  int                `json:"score"`
	Level  int                `json:"level"`
	Lines  int                `json:"lines"`
	Combo  int                `json:"combo"`
	Over   bool               `json:"gameOver,omitempty"`
}

func frameStateOf(st tetris.Snapshot) *FrameState {
	return &FrameState{
		Active: st.Active.Piece,
		Hold:   st.Hold,
		Next:   st.Next,
		Score:  st.Score,
		Level:  st.Level,
		Lines:  st.Lines,
		Combo:  st.Combo,
		Over:   st.IsGameOver,
	}
}

// ReplayFormatError reports corrupt or incomplete replay data.
type ReplayFormatError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ReplayFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("replay: %s", e.Reason)
	}
	return fmt.Sprintf("replay: invalid %s: %s", e.Field, e.Reason)
}

func (e *ReplayFormatError) Unwrap() error { return e.Err }

func formatErr(field, reason string) error {
	return &ReplayFormatError{Field: field, Reason: reason}
}

var (
	requiredFields      = []string{"version", "seed", "gameMode", "frames", "finalScore", "durationMs"}
	requiredFrameFields = []string{"timestampMs", "commands"}
)

// Decode reads and validates a replay. Every failure is a
// *ReplayFormatError.
func Decode(r io.Reader) (*Replay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ReplayFormatError{Reason: "read failed", Err: err}
	}

	var raw struct {
		Fields map[string]json.RawMessage
		Frames []map[string]json.RawMessage
	}
	if err := json.Unmarshal(data, &raw.Fields); err != nil {
		return nil, &ReplayFormatError{Reason: "malformed JSON", Err: err}
	}
	for _, f := range requiredFields {
		if v, ok := raw.Fields[f]; !ok || bytes.Equal(v, []byte("null")) {
			return nil, formatErr(f, "missing")
		}
	}
	if err := json.Unmarshal(raw.Fields["frames"], &raw.Frames); err != nil {
		return nil, &ReplayFormatError{Field: "frames", Reason: "not an array of objects", Err: err}
	}
	for i, fr := range raw.Frames {
		for _, f := range requiredFrameFields {
			if _, ok := fr[f]; !ok {
				return nil, formatErr(fmt.Sprintf("frames[%d].%s", i, f), "missing")
			}
		}
	}

	var rep Replay
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, &ReplayFormatError{Reason: "wrong field types", Err: err}
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Encode writes the replay as indented JSON.
func Encode(w io.Writer, r *Replay) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("replay: encode: %w", err)
	}
	return nil
}

// Validate checks semantic constraints that the JSON shape cannot express.
func (r *Replay) Validate() error {
	if r.Version != Version {
		return formatErr("version", fmt.Sprintf("unsupported version %d", r.Version))
	}
	if r.GameMode == "" {
		return formatErr("gameMode", "empty")
	}
	if !registry.Exists(r.GameMode) {
		return formatErr("gameMode", fmt.Sprintf("unknown mode %q", r.GameMode))
	}
	if r.Frames == nil {
		return formatErr("frames", "missing")
	}
	if r.Mode != nil && (r.Mode.TargetLines < 0 || r.Mode.TimeLimitMs < 0) {
		return formatErr("mode", "negative limit")
	}
	if r.FinalScore < 0 {
		return formatErr("finalScore", "negative")
	}
	if r.DurationMs < 0 {
		return formatErr("durationMs", "negative")
	}

	prev := 0
	for i, f := range r.Frames {
		if f.TimestampMs < prev {
			return formatErr(fmt.Sprintf("frames[%d].timestampMs", i), "decreasing or negative")
		}
		prev = f.TimestampMs
		for _, name := range f.Commands {
			cmd, ok := tetris.ParseCommand(name)
			if !ok || cmd == tetris.CmdReset {
				return formatErr(fmt.Sprintf("frames[%d].commands", i), fmt.Sprintf("unknown command %q", name))
			}
		}
		for _, g := range f.Garbage {
			if g.Count < 1 || g.Count > tetris.BoardRows || g.Holes < 1 || g.Holes >= tetris.BoardCols {
				return formatErr(fmt.Sprintf("frames[%d].garbage", i), fmt.Sprintf("out of range %+v", g))
			}
		}
	}
	return nil
}

// Commands returns the total number of recorded commands.
func (r *Replay) Commands() int {
	n := 0
	for _, f := range r.Frames {
		n += len(f.Commands)
	}
	return n
}
