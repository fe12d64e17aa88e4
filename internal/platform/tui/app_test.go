package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func testOptions(store *storage.Store) AppOptions {
	return AppOptions{
		Config: config.DefaultTetrisConfig(),
		Store:  store,
		Seed:   11,
		Width:  80,
		Height: 30,
	}
}

func sendApp(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

// openMenuItem moves the menu cursor to the first entry of kind and selects it.
func openMenuItem(t *testing.T, m AppModel, kind MenuKind) AppModel {
	t.Helper()
	require.Equal(t, screenMenu, m.screen)
	for range len(m.menu.items) {
		if m.menu.items[m.menu.cursor].Kind == kind {
			m, _ = sendApp(t, m, enterKey)
			return m
		}
		m, _ = sendApp(t, m, downKey)
	}
	t.Fatalf("menu has no entry of kind %d", kind)
	return m
}

func TestRankGames(t *testing.T) {
	games := []storage.GameRecord{
		{ID: 1, Score: 500, DurationMs: 90_000, Reason: tetris.EndCompleted},
		{ID: 2, Score: 900, DurationMs: 40_000, Reason: tetris.EndTopOut},
		{ID: 3, Score: 100, DurationMs: 60_000, Reason: tetris.EndCompleted},
	}

	byScore := rankGames(games, false)
	require.Len(t, byScore, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{byScore[0].ID, byScore[1].ID, byScore[2].ID})

	byTime := rankGames(games, true)
	require.Len(t, byTime, 2, "unfinished races are not ranked")
	assert.Equal(t, int64(3), byTime[0].ID)
	assert.Equal(t, int64(1), byTime[1].ID)

	assert.Equal(t, int64(1), games[0].ID, "input must not be reordered")
}

func TestScoreboardRaceMode(t *testing.T) {
	store := openTestStore(t)
	for _, sum := range []tetris.Summary{
		{Mode: modes.Sprint, Seed: 1, Score: 300, Lines: 20, DurationMs: 75_000, Reason: tetris.EndCompleted},
		{Mode: modes.Sprint, Seed: 2, Score: 900, Lines: 12, DurationMs: 30_000, Reason: tetris.EndTopOut},
	} {
		_, err := store.SaveGame(sum)
		require.NoError(t, err)
	}

	m := NewScoreboardModel(store, 120, 40)
	sprint := -1
	for i, info := range m.modes {
		if info.ID == modes.Sprint {
			sprint = i
		}
	}
	require.GreaterOrEqual(t, sprint, 0)

	for m.current != sprint {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(ScoreboardModel)
	}
	require.True(t, m.race)
	require.Len(t, m.games, 1, "only completed runs are ranked")
	require.NotNil(t, m.Selected())
	assert.Equal(t, int64(1), m.Selected().Seed)

	view := m.View()
	assert.Contains(t, view, "FASTEST RUNS")
	assert.Contains(t, view, "Run details")
	assert.Contains(t, view, "1:15.0")

	next, _ := m.Update(runeKey("d"))
	m = next.(ScoreboardModel)
	assert.NotContains(t, m.View(), "Run details")
}

func TestMenuItems(t *testing.T) {
	local := NewMenuModel(nil, false, 80, 30)
	online := NewMenuModel(nil, true, 80, 30)

	modeCount := len(registry.List())
	require.Len(t, local.items, modeCount+4)
	require.Len(t, online.items, modeCount+5)

	for _, item := range local.items[:modeCount] {
		assert.Equal(t, MenuPlay, item.Kind)
		assert.True(t, registry.Exists(item.ModeID))
	}
	assert.Equal(t, MenuOnline, online.items[modeCount].Kind)
	assert.Equal(t, MenuQuit, local.items[len(local.items)-1].Kind)
	for _, item := range local.items {
		assert.NotEqual(t, MenuOnline, item.Kind)
	}
}

func TestMenuKeys(t *testing.T) {
	store := openTestStore(t)
	_, err := store.SaveScore(modes.Classic, 1234)
	require.NoError(t, err)

	m := NewMenuModel(store, false, 80, 30)
	require.Equal(t, modes.Classic, m.items[0].ModeID)
	assert.Equal(t, "1234", m.items[0].Best)
	assert.Contains(t, m.View(), "best 1234")

	// up from the first entry wraps to Quit
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(MenuModel)
	assert.Equal(t, MenuQuit, m.items[m.cursor].Kind)
	next, _ = m.Update(downKey)
	m = next.(MenuModel)
	assert.Equal(t, 0, m.cursor)

	// digits past the play entries do nothing
	next, _ = m.Update(runeKey("9"))
	m = next.(MenuModel)
	assert.Nil(t, m.Selected())

	next, _ = m.Update(runeKey("2"))
	m = next.(MenuModel)
	require.NotNil(t, m.Selected())
	assert.Equal(t, m.items[1].ModeID, m.Selected().ModeID)
}

func TestAppMenuNavigation(t *testing.T) {
	store := openTestStore(t)
	m := NewAppModel(testOptions(store))

	m = openMenuItem(t, m, MenuPlay)
	require.Equal(t, screenGame, m.screen)
	assert.Equal(t, int64(11), m.game.session.Seed())

	// the first esc pauses, the second leaves the game
	m, _ = sendApp(t, m, escKey)
	require.Equal(t, screenGame, m.screen)
	m, _ = sendApp(t, m, escKey)
	require.Equal(t, screenMenu, m.screen)

	for _, kind := range []MenuKind{MenuScores, MenuReplays, MenuStats} {
		m = openMenuItem(t, m, kind)
		assert.NotEqual(t, screenMenu, m.screen)
		assert.NotEmpty(t, m.View())
		m, _ = sendApp(t, m, escKey)
		require.Equal(t, screenMenu, m.screen, "kind %d", kind)
	}

	m = openMenuItem(t, m, MenuQuit)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestGameAppQuitsOnBack(t *testing.T) {
	_, err := NewGameApp(testOptions(nil), "no-such-mode")
	require.Error(t, err)

	m, err := NewGameApp(testOptions(nil), modes.Sprint)
	require.NoError(t, err)
	require.Equal(t, screenGame, m.screen)
	assert.Equal(t, modes.Sprint, m.game.session.Mode().ID)

	m, _ = sendApp(t, m, escKey)
	m, cmd := sendApp(t, m, escKey)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestAppRoutesMatchEvents(t *testing.T) {
	sessions := multiplayer.NewSessionRegistry()
	coordinator := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), sessions)
	session := multiplayer.NewChannelSession("alice-1", "alice", 16)
	defer session.Close()

	opts := testOptions(nil)
	opts.Coordinator = coordinator
	opts.Session = session
	m := NewAppModel(opts)

	// events outside the online screens are dropped
	m, _ = sendApp(t, m, multiplayer.LobbyCreatedEvent{Code: "ABCDEF"})
	require.Equal(t, screenMenu, m.screen)

	m = openMenuItem(t, m, MenuOnline)
	require.Equal(t, screenLobby, m.screen)

	m, cmd := sendApp(t, m, multiplayer.MatchStartedEvent{MatchID: "m-1", Side: multiplayer.Player2, Seed: 3})
	require.Equal(t, screenVersus, m.screen)
	assert.NotNil(t, cmd, "the app keeps listening for events")

	assert.Contains(t, m.View(), "Waiting for the first frame")
	var snap multiplayer.BattleSnapshot
	snap.Players[1].Score = 1234
	m, _ = sendApp(t, m, multiplayer.SnapshotEvent{MatchID: "m-1", Tick: 1, Snapshot: snap})
	assert.NotContains(t, m.View(), "Waiting for the first frame")

	// events for other matches are ignored
	m, _ = sendApp(t, m, multiplayer.MatchEndedEvent{MatchID: "m-0", Winner: multiplayer.Player1})
	assert.Nil(t, m.versus.Ended())

	m, _ = sendApp(t, m, multiplayer.MatchEndedEvent{MatchID: "m-1", Winner: multiplayer.Player2})
	require.NotNil(t, m.versus.Ended())
	assert.Contains(t, m.View(), "YOU WIN!")
}

// recordGame plays a short scripted game and returns its replay.
func recordGame(t *testing.T) *replay.Replay {
	t.Helper()
	mode, err := registry.Get(modes.Classic)
	require.NoError(t, err)

	s := tetris.NewSession(tetris.Options{Seed: 21, Mode: mode})
	rec := replay.NewRecorder(nil)
	rec.Attach(s)

	script := []tetris.Command{
		tetris.CmdMoveLeft, tetris.CmdHardDrop, tetris.CmdRotateCW,
		tetris.CmdMoveRight, tetris.CmdHardDrop, tetris.CmdHold, tetris.CmdHardDrop,
	}
	for _, c := range script {
		s.ApplyCommand(c)
		s.Tick(100)
	}
	return rec.Finish()
}

func TestReplayViewerPlaysToEnd(t *testing.T) {
	rep := recordGame(t)
	v, err := NewReplayViewerModel(rep, 60, 80, 30)
	require.NoError(t, err)
	assert.False(t, v.Done())

	v.advance(rep.DurationMs / 2)
	assert.False(t, v.Done())

	v.advance(rep.DurationMs)
	require.NoError(t, v.err)
	assert.True(t, v.Done())
	assert.Equal(t, rep.FinalScore, v.player.Session().State().Score)
	assert.Contains(t, v.View(), "END")

	// restart plays from the beginning again
	next, _ := v.Update(runeKey("r"))
	v = next.(ReplayViewerModel)
	assert.False(t, v.Done())
}

func TestReplayAppFromStore(t *testing.T) {
	store := openTestStore(t)
	rep := recordGame(t)
	id, err := store.SaveReplay(rep)
	require.NoError(t, err)

	loaded, err := store.Replay(id)
	require.NoError(t, err)

	m, err := NewReplayApp(testOptions(store), loaded)
	require.NoError(t, err)
	require.Equal(t, screenViewer, m.screen)

	m, _ = sendApp(t, m, TickMsg(time.Now()))
	m, cmd := sendApp(t, m, escKey)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
}
