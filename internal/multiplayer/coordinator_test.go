package multiplayer

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

type memorySaver struct {
	mu      sync.Mutex
	results []MatchResultData
	saved   chan struct{}
}

func newMemorySaver() *memorySaver {
	return &memorySaver{saved: make(chan struct{}, 4)}
}

func (s *memorySaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
	s.saved <- struct{}{}
	return nil
}

// waitFor reads events until one of type T arrives.
func waitFor[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *ChannelSession, *ChannelSession) {
	t.Helper()
	registry := NewSessionRegistry()
	host := NewChannelSession("host", "alice", 256)
	joiner := NewChannelSession("joiner", "bob", 256)
	registry.Register(host)
	registry.Register(joiner)

	cfg := DefaultCoordinatorConfig()
	cfg.TickRate = 100
	c := NewCoordinator(cfg, registry)
	c.SetSeedSource(func() int64 { return 42 })
	c.Start()
	t.Cleanup(c.Stop)
	return c, host, joiner
}

func startMatch(t *testing.T, c *Coordinator, host, joiner *ChannelSession) MatchStartedEvent {
	t.Helper()
	c.Send(CreateLobbyMsg{SessionID: host.ID()})
	created := waitFor[LobbyCreatedEvent](t, host)
	require.Len(t, created.Code, 6)

	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	joined := waitFor[LobbyJoinedEvent](t, joiner)
	assert.Equal(t, Player2, joined.Side)
	assert.Equal(t, host.ID(), joined.OpponentID)

	hostStart := waitFor[MatchStartedEvent](t, host)
	joinerStart := waitFor[MatchStartedEvent](t, joiner)
	assert.Equal(t, Player1, hostStart.Side)
	assert.Equal(t, Player2, joinerStart.Side)
	assert.Equal(t, hostStart.MatchID, joinerStart.MatchID)
	assert.Equal(t, int64(42), hostStart.Seed)
	return hostStart
}

func TestCoordinatorLobbyToMatch(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	started := startMatch(t, c, host, joiner)

	assert.Eventually(t, func() bool { return c.LobbyCount() == 0 && c.MatchCount() == 1 },
		time.Second, 10*time.Millisecond)

	snap := waitFor[SnapshotEvent](t, joiner)
	assert.Equal(t, started.MatchID, snap.MatchID)
	assert.Positive(t, snap.Tick)
}

func TestCoordinatorRoutesInput(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	started := startMatch(t, c, host, joiner)

	c.Send(PlayerInputMsg{MatchID: started.MatchID, Player: Player1, Commands: []tetris.Command{tetris.CmdHardDrop}})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case evt := <-host.Events():
			snap, ok := evt.(SnapshotEvent)
			if !ok {
				continue
			}
			own, opp := snap.Snapshot.For(Player1)
			if own.Stats.HardDrops == 1 {
				assert.Equal(t, 0, opp.Stats.HardDrops)
				return
			}
		case <-deadline:
			t.Fatal("hard drop never reached the host board")
		}
	}
}

func TestCoordinatorDisconnectEndsMatch(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	saver := newMemorySaver()
	c.SetResultSaver(saver)
	started := startMatch(t, c, host, joiner)

	joiner.Close()

	ended := waitFor[MatchEndedEvent](t, host)
	assert.Equal(t, started.MatchID, ended.MatchID)
	assert.Equal(t, MatchEndReasonDisconnect, ended.Reason)
	assert.Equal(t, Player1, ended.Winner)

	select {
	case <-saver.saved:
	case <-time.After(3 * time.Second):
		t.Fatal("match result was not saved")
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.results, 1)
	saved := saver.results[0]
	assert.Equal(t, int(Player1), saved.Winner)
	assert.Equal(t, "disconnect", saved.EndReason)
	assert.Equal(t, BattleModeID, saved.Mode)
	assert.Equal(t, "host", saved.Players[0].Session)
	assert.Equal(t, "alice", saved.Players[0].Name)
	assert.Equal(t, "bob", saved.Players[1].Name)

	assert.Eventually(t, func() bool { return c.MatchCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCoordinatorLobbyErrors(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: "NOPE00"})
	assert.Equal(t, "Lobby not found", waitFor[LobbyErrorEvent](t, joiner).Message)

	c.Send(CreateLobbyMsg{SessionID: host.ID()})
	created := waitFor[LobbyCreatedEvent](t, host)

	c.Send(CreateLobbyMsg{SessionID: host.ID()})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, host).Message)

	c.Send(JoinLobbyMsg{SessionID: host.ID(), Code: created.Code})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, host).Message)

	c.Send(LeaveMsg{SessionID: host.ID()})
	assert.Eventually(t, func() bool { return c.LobbyCount() == 0 }, time.Second, 10*time.Millisecond)

	// the code is gone with the lobby
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	assert.Equal(t, "Lobby not found", waitFor[LobbyErrorEvent](t, joiner).Message)
}

func TestCoordinatorJoinCodeIsCaseInsensitive(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(CreateLobbyMsg{SessionID: host.ID()})
	created := waitFor[LobbyCreatedEvent](t, host)

	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: " " + strings.ToLower(created.Code) + " "})
	started := waitFor[MatchStartedEvent](t, joiner)
	assert.Equal(t, created.Code, started.Code)
}

func TestCoordinatorQuickMatch(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(QuickMatchMsg{SessionID: host.ID()})
	waitFor[SearchingEvent](t, host)

	c.Send(QuickMatchMsg{SessionID: host.ID()})
	assert.Equal(t, "Already searching for a match", waitFor[LobbyErrorEvent](t, host).Message)

	c.Send(QuickMatchMsg{SessionID: joiner.ID()})
	first := waitFor[MatchStartedEvent](t, host)
	second := waitFor[MatchStartedEvent](t, joiner)
	assert.Equal(t, first.MatchID, second.MatchID)
	assert.Equal(t, Player1, first.Side, "the session that waited hosts")
	assert.Equal(t, Player2, second.Side)
	assert.Empty(t, first.Code)

	c.Send(QuickMatchMsg{SessionID: joiner.ID()})
	assert.Equal(t, "Already in a match", waitFor[LobbyErrorEvent](t, joiner).Message)
}

func TestCoordinatorLeaveQueue(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(QuickMatchMsg{SessionID: host.ID()})
	waitFor[SearchingEvent](t, host)
	c.Send(LeaveMsg{SessionID: host.ID()})

	// with the queue empty again the next asker waits too
	c.Send(QuickMatchMsg{SessionID: joiner.ID()})
	waitFor[SearchingEvent](t, joiner)
	assert.Equal(t, 0, c.MatchCount())
}

func TestCoordinatorLeaveForfeitsMatch(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	started := startMatch(t, c, host, joiner)

	c.Send(LeaveMsg{SessionID: host.ID()})

	ended := waitFor[MatchEndedEvent](t, joiner)
	assert.Equal(t, started.MatchID, ended.MatchID)
	assert.Equal(t, MatchEndReasonDisconnect, ended.Reason)
	assert.Equal(t, Player2, ended.Winner)
}

func TestCoordinatorExpiresLobbies(t *testing.T) {
	registry := NewSessionRegistry()
	host := NewChannelSession("host", "alice", 16)
	registry.Register(host)

	cfg := DefaultCoordinatorConfig()
	cfg.LobbyTimeout = 20 * time.Millisecond
	cfg.CleanupPeriod = 10 * time.Millisecond
	c := NewCoordinator(cfg, registry)
	c.Start()
	t.Cleanup(c.Stop)

	c.Send(CreateLobbyMsg{SessionID: host.ID()})
	waitFor[LobbyCreatedEvent](t, host)

	assert.Equal(t, "Lobby expired", waitFor[LobbyErrorEvent](t, host).Message)
	assert.Eventually(t, func() bool { return c.LobbyCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCoordinatorStopCancelsMatches(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	saver := newMemorySaver()
	c.SetResultSaver(saver)
	startMatch(t, c, host, joiner)

	c.Stop()
	c.Stop()

	select {
	case <-saver.saved:
		t.Fatal("a cancelled match must not be saved")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestJoinCodes(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code := newJoinCode()
		assert.Regexp(t, `^[A-HJ-NP-Z2-9]{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)

	assert.True(t, ValidCodeRune('k'))
	assert.True(t, ValidCodeRune('7'))
	assert.False(t, ValidCodeRune('O'))
	assert.False(t, ValidCodeRune('1'))
	assert.Equal(t, "ABC234", NormalizeCode(" abc234 "))
}
