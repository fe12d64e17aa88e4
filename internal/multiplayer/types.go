// Package multiplayer runs two-player battles: a lobby coordinator pairs SSH
// sessions by join code and an authoritative match loop steps both boards,
// routing garbage between them.
package multiplayer

// PlayerID identifies a side of a battle.
type PlayerID int

const (
	NoPlayer PlayerID = iota // draw or no winner
	Player1                  // lobby host
	Player2                  // joiner
)

// Index returns the zero-based slot of the player.
func (p PlayerID) Index() int {
	return int(p) - 1
}

// Opponent returns the other side.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// String returns a human-readable name for the player.
func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "P1"
	case Player2:
		return "P2"
	default:
		return "none"
	}
}

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies a battle.
type MatchID string

// BattleModeID is the mode name recorded for online battles.
const BattleModeID = "battle"
