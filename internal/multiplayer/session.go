package multiplayer

import (
	"sync"
	"sync/atomic"
)

// SessionHandle is how the coordinator and matches reach a connected player.
// Send must not block: a slow terminal can never stall a match.
type SessionHandle interface {
	ID() SessionID
	Name() string
	Send(evt SessionEvent)
	Done() <-chan struct{}
}

// ChannelSession delivers events through a buffered channel read by the TUI.
//
// When the buffer is full a snapshot is dropped, since the next tick brings a
// fresher one. Any other event makes room by evicting the oldest queued event
// so lobby and match transitions are never lost behind a backlog of frames.
type ChannelSession struct {
	id   SessionID
	name string

	mu      sync.Mutex // serializes senders so evictions stay ordered
	events  chan SessionEvent
	dropped atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSession creates a session with room for buffer pending events.
func NewChannelSession(id SessionID, name string, buffer int) *ChannelSession {
	if buffer < 1 {
		buffer = 64
	}
	return &ChannelSession{
		id:     id,
		name:   name,
		events: make(chan SessionEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID { return s.id }

// Name is the player's display name, the SSH user for remote sessions.
func (s *ChannelSession) Name() string {
	if s.name == "" {
		return string(s.id)
	}
	return s.name
}

// Send queues evt. It is a no-op once the session is closed.
func (s *ChannelSession) Send(evt SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	_, snapshot := evt.(SnapshotEvent)
	for {
		select {
		case s.events <- evt:
			return
		default:
		}
		if snapshot {
			s.dropped.Add(1)
			return
		}
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
	}
}

// Events is read by the TUI.
func (s *ChannelSession) Events() <-chan SessionEvent { return s.events }

func (s *ChannelSession) Done() <-chan struct{} { return s.done }

// Dropped returns how many events were discarded because the reader lagged.
func (s *ChannelSession) Dropped() uint64 { return s.dropped.Load() }

// Close ends the session. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// SessionRegistry maps IDs to connected sessions. It is shared by the SSH
// handlers, which register and unregister, and the coordinator, which looks
// sessions up.
type SessionRegistry struct {
	mu   sync.RWMutex
	byID map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{byID: make(map[SessionID]SessionHandle)}
}

func (r *SessionRegistry) Register(s SessionHandle) {
	r.mu.Lock()
	r.byID[s.ID()] = s
	r.mu.Unlock()
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// Get returns the session with the given ID, if it is still connected.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// Count returns the number of connected sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
