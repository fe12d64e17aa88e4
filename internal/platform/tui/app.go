package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/audio"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// AppOptions configures a full session: menu, games and the other screens.
type AppOptions struct {
	Config   config.TetrisConfig
	Store    *storage.Store       // nil disables persistence
	Sound    *audio.Player        // nil plays silently
	TickRate int                  // frames per second
	Seed     int64                // fixed seed for every game, 0 for time-based
	Width    int
	Height   int

	// Online play is offered when both are set.
	Coordinator *multiplayer.Coordinator
	Session     *multiplayer.ChannelSession
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenScores
	screenReplays
	screenViewer
	screenStats
	screenLobby
	screenVersus
)

// AppModel manages the full session flow: menu -> screen -> menu.
// It is the top-level model for both local and SSH sessions, and the only
// reader of the session's coordinator events.
type AppModel struct {
	opts   AppOptions
	screen appScreen
	direct bool // started on a sub-screen, leaving it quits

	menu    MenuModel
	game    GameModel
	scores  ScoreboardModel
	replays ReplayListModel
	viewer  ReplayViewerModel
	stats   StatsModel
	lobby   OnlineLobbyModel
	versus  VersusModel

	quitting bool
}

// NewAppModel creates a session that starts on the menu.
func NewAppModel(opts AppOptions) AppModel {
	if opts.TickRate < 1 {
		opts.TickRate = 60
	}
	m := AppModel{opts: opts}
	m.menu = NewMenuModel(opts.Store, m.online(), opts.Width, opts.Height)
	return m
}

// NewGameApp creates a session that starts straight into a game of modeID and
// ends when the player leaves it.
func NewGameApp(opts AppOptions, modeID string) (AppModel, error) {
	m := NewAppModel(opts)
	if err := m.startGame(modeID); err != nil {
		return m, err
	}
	m.direct = true
	return m, nil
}

// NewReplayApp creates a session that plays one replay and ends when the
// player leaves it.
func NewReplayApp(opts AppOptions, rep *replay.Replay) (AppModel, error) {
	m := NewAppModel(opts)
	viewer, err := NewReplayViewerModel(rep, m.opts.TickRate, m.opts.Width, m.opts.Height)
	if err != nil {
		return m, err
	}
	m.viewer = viewer
	m.screen = screenViewer
	m.direct = true
	return m, nil
}

func (m AppModel) online() bool {
	return m.opts.Coordinator != nil && m.opts.Session != nil
}

// Init initializes the current screen and starts listening for coordinator events.
func (m AppModel) Init() tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case screenGame:
		cmd = m.game.Init()
	case screenViewer:
		cmd = m.viewer.Init()
	default:
		cmd = m.menu.Init()
	}
	return tea.Batch(cmd, m.waitForEvent())
}

// waitForEvent returns a command that waits for the next coordinator event.
func (m AppModel) waitForEvent() tea.Cmd {
	if m.opts.Session == nil {
		return nil
	}
	events := m.opts.Session.Events()
	done := m.opts.Session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return evt
		case <-done:
			return nil
		}
	}
}

// Update handles messages for the session.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}
	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		return m.routeEvent(evt)
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	case screenReplays:
		return m.updateReplays(msg)
	case screenViewer:
		return m.updateViewer(msg)
	case screenStats:
		return m.updateStats(msg)
	case screenLobby:
		return m.updateLobby(msg)
	case screenVersus:
		return m.updateVersus(msg)
	default:
		return m.updateMenu(msg)
	}
}

// routeEvent hands a coordinator event to the online screens. Events that
// arrive anywhere else are stale and dropped.
func (m AppModel) routeEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenLobby:
		next, _ := m.lobby.Update(evt)
		if lobby, ok := next.(OnlineLobbyModel); ok {
			m.lobby = lobby
		}
		if m.lobby.State() == OnlineStateInMatch {
			m.versus = NewVersusModel(
				m.opts.Coordinator,
				m.opts.Session.ID(),
				m.lobby.MatchID(),
				m.lobby.Side(),
				m.opts.Config.Input.DAS,
				m.opts.Config.Input.ARR,
				m.opts.Width,
				m.opts.Height,
			)
			m.screen = screenVersus
		}
	case screenVersus:
		next, _ := m.versus.Update(evt)
		if versus, ok := next.(VersusModel); ok {
			m.versus = versus
		}
	}
	return m, m.waitForEvent()
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	w, h := m.opts.Width, m.opts.Height
	switch selected.Kind {
	case MenuPlay:
		if err := m.startGame(selected.ModeID); err != nil {
			// Shouldn't happen since the menu only shows registered modes
			return m.toMenu()
		}
		return m, m.game.Init()
	case MenuOnline:
		m.lobby = NewOnlineLobbyModel(m.opts.Session.ID(), m.opts.Coordinator, w, h)
		if m.opts.Store != nil {
			if st, err := m.opts.Store.StandingOf(m.opts.Session.Name()); err == nil && st.Played > 0 {
				m.lobby = m.lobby.WithStanding(st)
			}
		}
		m.screen = screenLobby
	case MenuScores:
		m.scores = NewScoreboardModel(m.opts.Store, w, h)
		m.screen = screenScores
	case MenuReplays:
		m.replays = NewReplayListModel(m.opts.Store, w, h)
		m.screen = screenReplays
	case MenuStats:
		m.stats = NewStatsModel(m.opts.Store, achievements.FromConfig(m.opts.Config.Achievements), w, h)
		m.screen = screenStats
	}
	return m, nil
}

func (m *AppModel) startGame(modeID string) error {
	mode, err := registry.Get(modeID)
	if err != nil {
		return err
	}
	setup := NewGameSetup(m.opts.Config, mode, m.opts.Seed, m.opts.TickRate)
	m.game = NewGameModel(setup, m.opts.Store, m.opts.Sound, m.opts.Width, m.opts.Height)
	m.screen = screenGame
	return nil
}

// toMenu returns to a fresh menu, or ends a session that was started on a
// sub-screen.
func (m AppModel) toMenu() (tea.Model, tea.Cmd) {
	if m.direct {
		m.quitting = true
		return m, tea.Quit
	}
	m.menu = NewMenuModel(m.opts.Store, m.online(), m.opts.Width, m.opts.Height)
	m.screen = screenMenu
	return m, m.menu.Init()
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(GameModel); ok {
		m.game = game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

func (m AppModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if scores, ok := next.(ScoreboardModel); ok {
		m.scores = scores
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		return m.toMenu()
	}
	return m, cmd
}

func (m AppModel) updateReplays(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.replays.Update(msg)
	if replays, ok := next.(ReplayListModel); ok {
		m.replays = replays
	}

	if m.replays.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.replays.IsGoingBack() {
		return m.toMenu()
	}
	if rep := m.replays.Opened(); rep != nil {
		m.replays.opened = nil
		viewer, err := NewReplayViewerModel(rep, m.opts.TickRate, m.opts.Width, m.opts.Height)
		if err != nil {
			m.replays.status = err.Error()
			return m, nil
		}
		m.viewer = viewer
		m.screen = screenViewer
		return m, m.viewer.Init()
	}
	return m, cmd
}

func (m AppModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.viewer.Update(msg)
	if viewer, ok := next.(ReplayViewerModel); ok {
		m.viewer = viewer
	}

	if m.viewer.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.viewer.BackToMenu() {
		if m.direct {
			return m.toMenu()
		}
		m.replays = NewReplayListModel(m.opts.Store, m.opts.Width, m.opts.Height)
		m.screen = screenReplays
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.stats.Update(msg)
	if stats, ok := next.(StatsModel); ok {
		m.stats = stats
	}

	if m.stats.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.stats.IsGoingBack() {
		return m.toMenu()
	}
	return m, cmd
}

func (m AppModel) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.lobby.Update(msg)
	if lobby, ok := next.(OnlineLobbyModel); ok {
		m.lobby = lobby
	}

	if m.lobby.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.lobby.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

func (m AppModel) updateVersus(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.versus.Update(msg)
	if versus, ok := next.(VersusModel); ok {
		m.versus = versus
	}

	if m.versus.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.versus.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	case screenReplays:
		return m.replays.View()
	case screenViewer:
		return m.viewer.View()
	case screenStats:
		return m.stats.View()
	case screenLobby:
		return m.lobby.View()
	case screenVersus:
		return m.versus.View()
	default:
		return m.menu.View()
	}
}

// Run starts the Bubble Tea program with the given model on the local terminal.
func Run(model tea.Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
