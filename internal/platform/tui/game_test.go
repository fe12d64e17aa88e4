package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestGame(t *testing.T, store *storage.Store) GameModel {
	t.Helper()
	mode, err := registry.Get(modes.Classic)
	require.NoError(t, err)
	setup := NewGameSetup(config.DefaultTetrisConfig(), mode, 7, 60)
	return NewGameModel(setup, store, nil, 80, 30)
}

func send(t *testing.T, m GameModel, msg tea.Msg) GameModel {
	t.Helper()
	next, _ := m.Update(msg)
	game, ok := next.(GameModel)
	require.True(t, ok)
	return game
}

// dropUntilOver hard drops pieces in place until the stack reaches the top.
func dropUntilOver(t *testing.T, m GameModel) GameModel {
	t.Helper()
	for range 200 {
		if m.session.Status() == tetris.StatusGameOver {
			return m
		}
		m = send(t, m, spaceKey)
	}
	require.Equal(t, tetris.StatusGameOver, m.session.Status(), "stack never topped out")
	return m
}

func TestGameModelPersistsFinishedGameOnce(t *testing.T) {
	store := openTestStore(t)
	m := dropUntilOver(t, newTestGame(t, store))

	res := m.Result()
	require.NotNil(t, res)
	require.NoError(t, res.Err)
	assert.Equal(t, tetris.EndTopOut, res.Summary.Reason)
	assert.NotEmpty(t, res.ReplayID)

	// further input after game over must not save again
	m = send(t, m, spaceKey)
	m = send(t, m, TickMsg(time.Now()))

	games, err := store.Games(modes.Classic, 10)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	replays, err := store.Replays(10)
	require.NoError(t, err)
	require.Len(t, replays, 1)
	assert.Equal(t, res.ReplayID, replays[0].ID)

	rep, err := store.Replay(res.ReplayID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary.Score, rep.FinalScore)

	// a reset arms persistence for the next game
	m = send(t, m, runeKey("r"))
	assert.Nil(t, m.Result())
	assert.Equal(t, tetris.StatusRunning, m.session.Status())

	m = dropUntilOver(t, m)
	require.NotNil(t, m.Result())
	assert.NotEqual(t, res.ReplayID, m.Result().ReplayID)

	games, err = store.Games(modes.Classic, 10)
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestGameModelWithoutStore(t *testing.T) {
	m := dropUntilOver(t, newTestGame(t, nil))

	res := m.Result()
	require.NotNil(t, res)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.ReplayID)
	assert.False(t, res.NewBest)
	assert.Contains(t, m.View(), "GAME OVER")
}

func TestGameModelCapsTickElapsed(t *testing.T) {
	m := newTestGame(t, nil)

	clock := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return clock }
	m.lastTick = clock

	clock = clock.Add(10 * time.Second)
	m = send(t, m, TickMsg(clock))
	assert.Equal(t, maxTickMs, m.Snapshot().ElapsedMs)

	clock = clock.Add(100 * time.Millisecond)
	m = send(t, m, TickMsg(clock))
	assert.Equal(t, maxTickMs+100, m.Snapshot().ElapsedMs)
}

func TestGameModelPauseResume(t *testing.T) {
	m := newTestGame(t, nil)

	clock := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return clock }
	m.lastTick = clock

	m = send(t, m, runeKey("p"))
	require.Equal(t, tetris.StatusPaused, m.session.Status())

	// time spent paused is never fed to the engine
	clock = clock.Add(time.Minute)
	m = send(t, m, TickMsg(clock))
	m = send(t, m, runeKey("p"))
	require.Equal(t, tetris.StatusRunning, m.session.Status())

	clock = clock.Add(50 * time.Millisecond)
	m = send(t, m, TickMsg(clock))
	assert.Equal(t, 50, m.Snapshot().ElapsedMs)
}

func TestGameModelBackPausesBeforeLeaving(t *testing.T) {
	m := newTestGame(t, nil)
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	m = send(t, m, esc)
	assert.Equal(t, tetris.StatusPaused, m.session.Status())
	assert.False(t, m.BackToMenu())
	assert.Contains(t, m.View(), "PAUSED")

	m = send(t, m, esc)
	assert.True(t, m.BackToMenu())
	assert.False(t, m.IsQuitting())
}

func TestGameModelQuit(t *testing.T) {
	m := newTestGame(t, nil)

	next, cmd := m.Update(runeKey("q"))
	m = next.(GameModel)
	assert.True(t, m.IsQuitting())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
