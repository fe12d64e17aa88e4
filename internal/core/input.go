package core

// Repeater turns a stream of key presses into game actions with delayed
// auto shift. Terminals report no key releases, so a key counts as held while
// repeats of it keep arriving within the release window.
//
// The first press fires immediately. Repeats are swallowed until DAS has
// passed since the first press, then fire at most once per ARR.
type Repeater[K comparable] struct {
	DAS     int // ms before auto-repeat starts
	ARR     int // ms between auto-repeats, 0 fires on every repeat
	Release int // ms without a repeat after which the key counts as released

	key       K
	held      bool
	startMs   int64
	lastFire  int64
	lastEvent int64
}

// NewRepeater creates a repeater. The release window defaults to a value
// above typical terminal repeat delays.
func NewRepeater[K comparable](das, arr int) *Repeater[K] {
	return &Repeater[K]{DAS: das, ARR: arr, Release: 600}
}

// Press records a press of k at nowMs and reports whether it should fire.
func (r *Repeater[K]) Press(k K, nowMs int64) bool {
	if !r.held || k != r.key || nowMs-r.lastEvent > int64(r.Release) {
		r.key = k
		r.held = true
		r.startMs = nowMs
		r.lastFire = nowMs
		r.lastEvent = nowMs
		return true
	}

	r.lastEvent = nowMs
	if nowMs-r.startMs < int64(r.DAS) {
		return false
	}
	if nowMs-r.lastFire < int64(r.ARR) {
		return false
	}
	r.lastFire = nowMs
	return true
}

// Reset forgets the held key.
func (r *Repeater[K]) Reset() {
	var zero K
	r.key = zero
	r.held = false
}

// Action is a screen-level request that is not a game command.
type Action int

const (
	ActionNone Action = iota
	ActionConfirm
	ActionBack
	ActionQuit
	ActionMute
)

var actionNames = [...]string{"None", "Confirm", "Back", "Quit", "Mute"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}
