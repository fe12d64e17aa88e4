package multiplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *ChannelSession) []SessionEvent {
	var out []SessionEvent
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func TestChannelSessionDropsSnapshotsWhenFull(t *testing.T) {
	s := NewChannelSession("p1", "", 2)
	assert.Equal(t, "p1", s.Name(), "name falls back to the id")

	s.Send(LobbyCreatedEvent{Code: "ABCDEF"})
	s.Send(SnapshotEvent{Tick: 1})
	s.Send(SnapshotEvent{Tick: 2})

	got := drain(s)
	require.Len(t, got, 2)
	assert.Equal(t, LobbyCreatedEvent{Code: "ABCDEF"}, got[0])
	assert.Equal(t, uint64(1), got[1].(SnapshotEvent).Tick)
	assert.Equal(t, uint64(1), s.Dropped())
}

func TestChannelSessionControlEventsEvictOldest(t *testing.T) {
	s := NewChannelSession("p1", "alice", 2)

	s.Send(SnapshotEvent{Tick: 1})
	s.Send(SnapshotEvent{Tick: 2})
	s.Send(MatchEndedEvent{MatchID: "m"})

	got := drain(s)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].(SnapshotEvent).Tick)
	assert.Equal(t, MatchID("m"), got[1].(MatchEndedEvent).MatchID)
}

func TestChannelSessionClose(t *testing.T) {
	s := NewChannelSession("p1", "alice", 4)
	s.Close()
	s.Close()

	s.Send(LobbyCreatedEvent{Code: "ABCDEF"})
	assert.Empty(t, drain(s))

	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	a := NewChannelSession("a", "alice", 1)
	r.Register(a)
	r.Register(NewChannelSession("b", "bob", 1))
	assert.Equal(t, 2, r.Count())

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Name())

	r.Unregister("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}
