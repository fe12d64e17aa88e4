package multiplayer

// SessionEvent is pushed by the coordinator or a running match to a player's
// session. The TUI receives them as Bubble Tea messages.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent carries the join code of a lobby the session now hosts.
type LobbyCreatedEvent struct {
	Code string
}

// LobbyErrorEvent reports a rejected request or an expired lobby. The
// session is back to idle.
type LobbyErrorEvent struct {
	Message string
}

// LobbyJoinedEvent tells both players who they were paired with, just before
// the match starts.
type LobbyJoinedEvent struct {
	Code         string // empty for quick matches
	Side         PlayerID
	OpponentID   SessionID
	OpponentName string
}

// SearchingEvent confirms that the session waits in the quick match queue.
type SearchingEvent struct{}

// MatchStartedEvent is the first event of a match. Both players receive the
// same seed, so their boards see the same pieces.
type MatchStartedEvent struct {
	MatchID MatchID
	Side    PlayerID
	Code    string
	Seed    int64
}

// SnapshotEvent carries both boards after a match tick.
type SnapshotEvent struct {
	MatchID  MatchID
	Tick     uint64
	Snapshot BattleSnapshot
}

// MatchEndedEvent is the last event of a match.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID // NoPlayer on a draw
	Score1  int
	Score2  int
	Lines1  int
	Lines2  int
}

func (LobbyCreatedEvent) sessionEvent() {}
func (LobbyErrorEvent) sessionEvent()   {}
func (LobbyJoinedEvent) sessionEvent()  {}
func (SearchingEvent) sessionEvent()    {}
func (MatchStartedEvent) sessionEvent() {}
func (SnapshotEvent) sessionEvent()     {}
func (MatchEndedEvent) sessionEvent()   {}

// MatchEndReason is stored with match results.
type MatchEndReason string

const (
	MatchEndReasonCompleted  MatchEndReason = "completed"  // a board topped out
	MatchEndReasonDisconnect MatchEndReason = "disconnect" // a player left or dropped
	MatchEndReasonCancelled  MatchEndReason = "cancelled"  // the server shut down
)

// Message is the line shown to players when the match ends.
func (r MatchEndReason) Message() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Board topped out"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	default:
		return string(r)
	}
}
