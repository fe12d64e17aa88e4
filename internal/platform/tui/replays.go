package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

const maxListedReplays = 50

// ReplayKeyMap defines the key bindings for the replay list.
type ReplayKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReplayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ReplayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultReplayKeyMap returns default key bindings.
func DefaultReplayKeyMap() ReplayKeyMap {
	return ReplayKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "watch")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ReplayListModel lists stored replays and opens one for playback.
type ReplayListModel struct {
	store     *storage.Store
	replays   []storage.ReplayInfo
	table     table.Model
	help      help.Model
	keys      ReplayKeyMap
	width     int
	height    int
	status    string
	opened    *replay.Replay
	goingBack bool
	quitting  bool
}

// NewReplayListModel creates the replay list.
func NewReplayListModel(store *storage.Store, width, height int) ReplayListModel {
	m := ReplayListModel{
		store:  store,
		help:   help.New(),
		keys:   DefaultReplayKeyMap(),
		width:  width,
		height: height,
	}
	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Mode", Width: 9},
			{Title: "Score", Width: 9},
			{Title: "Time", Width: 8},
			{Title: "Date", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(max(height-8, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
	m.reload()
	return m
}

func (m *ReplayListModel) reload() {
	m.replays = nil
	if m.store != nil {
		if list, err := m.store.Replays(maxListedReplays); err == nil {
			m.replays = list
		} else {
			m.status = err.Error()
		}
	}

	rows := make([]table.Row, len(m.replays))
	for i, r := range m.replays {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows[i] = table.Row{
			id,
			r.Mode,
			fmt.Sprintf("%d", r.Score),
			formatDuration(r.DurationMs),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
}

// Init initializes the list.
func (m ReplayListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the list.
func (m ReplayListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil
		case key.Matches(msg, m.keys.Open):
			if r, ok := m.current(); ok {
				rep, err := m.store.Replay(r.ID)
				if err != nil {
					m.status = err.Error()
					return m, nil
				}
				m.opened = rep
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if r, ok := m.current(); ok {
				if err := m.store.DeleteReplay(r.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = "deleted " + r.ID
				}
				m.reload()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-8, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ReplayListModel) current() (storage.ReplayInfo, bool) {
	i := m.table.Cursor()
	if m.store == nil || i < 0 || i >= len(m.replays) {
		return storage.ReplayInfo{}, false
	}
	return m.replays[i], true
}

// View renders the list.
func (m ReplayListModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString(title.Render(centerText("REPLAYS", m.width)))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	if len(m.replays) == 0 {
		empty := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4)
		b.WriteString(centerText(box.Render(empty.Render("No replays saved yet.")), m.width))
	} else {
		b.WriteString(centerText(box.Render(m.table.View()), m.width))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys)))
	return b.String()
}

// Opened returns the replay chosen for playback, or nil.
func (m ReplayListModel) Opened() *replay.Replay {
	return m.opened
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ReplayListModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ReplayListModel) IsQuitting() bool {
	return m.quitting
}

var replaySpeeds = []int{1, 2, 4, 8}

// ReplayViewerModel plays a replay back through a fresh engine, verifying
// every recorded frame on the way.
type ReplayViewerModel struct {
	rep      *replay.Replay
	player   *replay.Player
	screen   *core.Screen
	tickRate int
	clock    int // replay time shown so far, ms
	speedIdx int
	paused   bool
	err      error
	back     bool
	quitting bool
}

// NewReplayViewerModel validates rep and prepares playback.
func NewReplayViewerModel(rep *replay.Replay, tickRate, width, height int) (ReplayViewerModel, error) {
	player, err := replay.NewPlayer(rep, true)
	if err != nil {
		return ReplayViewerModel{}, err
	}
	if tickRate < 1 {
		tickRate = 60
	}
	return ReplayViewerModel{
		rep:      rep,
		player:   player,
		screen:   core.NewScreen(width, height),
		tickRate: tickRate,
	}, nil
}

// Init starts playback.
func (m ReplayViewerModel) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages for the viewer.
func (m ReplayViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "esc", "b":
			m.back = true
		case " ", "p":
			m.paused = !m.paused
		case "+", "=", "right", "l":
			m.speedIdx = min(m.speedIdx+1, len(replaySpeeds)-1)
		case "-", "left", "h":
			m.speedIdx = max(m.speedIdx-1, 0)
		case "r":
			if player, err := replay.NewPlayer(m.rep, true); err == nil {
				m.player = player
				m.clock = 0
				m.err = nil
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if m.back {
			return m, nil
		}
		m.advance(replaySpeeds[m.speedIdx] * 1000 / m.tickRate)
		return m, tickCmd(m.tickRate)
	}
	return m, nil
}

// advance moves replay time forward and applies every frame that is due.
func (m *ReplayViewerModel) advance(ms int) {
	if m.paused || m.err != nil || m.player.Done() {
		return
	}
	m.clock += ms
	for !m.player.Done() && m.player.NextTimestamp() <= m.clock {
		if err := m.player.Step(); err != nil {
			m.err = err
			return
		}
	}
}

// View renders the replay.
func (m ReplayViewerModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	s := m.screen
	s.Clear()
	session := m.player.Session()
	applied, total := m.player.Progress()

	view := GameView{
		Snapshot: session.State(),
		Mode:     session.Mode(),
		Ghost:    false,
		Title:    "R E P L A Y",
		Extra: []string{
			fmt.Sprintf("speed %dx", replaySpeeds[m.speedIdx]),
			fmt.Sprintf("frame %d/%d", applied, total),
		},
	}
	switch {
	case m.err != nil:
		view.Overlay = []string{"DESYNC", "", "r restart", "Esc back"}
	case m.player.Done():
		view.Overlay = []string{"END", "", fmt.Sprintf("Score %d", m.rep.FinalScore), "", "r restart", "Esc back"}
	case m.paused:
		view.Overlay = []string{"PAUSED"}
	}
	x := max(0, (s.Width()-gameLayoutW)/2)
	drawGame(s, x, 2, view)

	full := core.NewRect(0, 0, s.Width(), s.Height())
	if m.err != nil {
		s.DrawTextCentered(full, 2+wellH+1, m.err.Error(), core.ColorBrightRed)
	}
	s.DrawTextCentered(full, s.Height()-1, "space pause  +/- speed  r restart  esc back  q quit", core.ColorGray)
	return RenderScreen(s)
}

// BackToMenu returns true if user requested to leave the viewer.
func (m ReplayViewerModel) BackToMenu() bool {
	return m.back
}

// IsQuitting returns true if user requested to quit entirely.
func (m ReplayViewerModel) IsQuitting() bool {
	return m.quitting
}

// Done reports whether playback reached the last frame.
func (m ReplayViewerModel) Done() bool {
	return m.player.Done()
}
