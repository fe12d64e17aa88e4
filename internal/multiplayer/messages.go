package multiplayer

import "github.com/vovakirdan/tui-tetris/internal/tetris"

// CoordinatorMessage is a request handled by the coordinator goroutine.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg hosts a lobby that waits for a friend to join by code.
type CreateLobbyMsg struct {
	SessionID SessionID
}

// JoinLobbyMsg joins a hosted lobby. The match starts right away.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string // case-insensitive
}

// QuickMatchMsg pairs the session with the next one asking for a quick match.
type QuickMatchMsg struct {
	SessionID SessionID
}

// LeaveMsg withdraws the session from whatever it is part of: a hosted lobby,
// the quick match queue, or a running match, which it forfeits.
type LeaveMsg struct {
	SessionID SessionID
}

// PlayerInputMsg queues commands for a player's board. They are applied in
// order on the next tick.
type PlayerInputMsg struct {
	MatchID  MatchID
	Player   PlayerID
	Commands []tetris.Command
}

// SessionDisconnectedMsg is sent by the transport when a connection drops.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

// matchOverMsg is posted by a match goroutine when its loop ends.
type matchOverMsg struct {
	result MatchResult
}

func (CreateLobbyMsg) coordinatorMessage()         {}
func (JoinLobbyMsg) coordinatorMessage()           {}
func (QuickMatchMsg) coordinatorMessage()          {}
func (LeaveMsg) coordinatorMessage()               {}
func (PlayerInputMsg) coordinatorMessage()         {}
func (SessionDisconnectedMsg) coordinatorMessage() {}
func (matchOverMsg) coordinatorMessage()           {}
