package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

const (
	scoreboardRows  = 100 // games loaded per mode
	detailPanelMin  = 90  // terminal width that fits the run details beside the table
	detailPanelSize = 26
)

type scoreboardKeys struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Details key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func (k scoreboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Details, k.Back}
}

func (k scoreboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Next, k.Prev}, {k.Details, k.Back, k.Quit}}
}

func newScoreboardKeys() scoreboardKeys {
	return scoreboardKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next mode")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev mode")),
		Details: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Back:    key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists the best finished games of each mode. Race modes
// are ranked by completion time, the rest by score.
type ScoreboardModel struct {
	modes   []registry.ModeInfo
	current int
	store   *storage.Store

	games   []storage.GameRecord
	summary *storage.ModeStats
	race    bool

	table       table.Model
	help        help.Model
	keys        scoreboardKeys
	showDetails bool

	width, height int
	quitting      bool
	goingBack     bool
}

// NewScoreboardModel creates the scoreboard, opened on the first mode.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		modes:       registry.List(),
		store:       store,
		help:        help.New(),
		keys:        newScoreboardKeys(),
		width:       width,
		height:      height,
		showDetails: width >= detailPanelMin,
	}
	m.selectMode(0)
	return m
}

func (m *ScoreboardModel) selectMode(i int) {
	if len(m.modes) == 0 {
		m.table = m.newTable()
		return
	}
	m.current = (i%len(m.modes) + len(m.modes)) % len(m.modes)
	id := m.modes[m.current].ID

	m.race = false
	if mode, err := registry.Get(id); err == nil {
		m.race = modes.IsRace(mode)
	}

	m.games, m.summary = nil, nil
	if m.store != nil {
		if games, err := m.store.Games(id, scoreboardRows); err == nil {
			m.games = rankGames(games, m.race)
		}
		if summary, err := m.store.GetModeStats(id); err == nil && summary.GamesCount > 0 {
			m.summary = summary
		}
	}

	m.table = m.newTable()
}

// newTable builds the ranking table for the current mode. Race modes lead
// with the run time.
func (m ScoreboardModel) newTable() table.Model {
	var cols []table.Column
	if m.race {
		cols = []table.Column{
			{Title: "#", Width: 4},
			{Title: "Time", Width: 9},
			{Title: "Pieces", Width: 7},
			{Title: "PPS", Width: 5},
			{Title: "Score", Width: 9},
			{Title: "Date", Width: 12},
		}
	} else {
		cols = []table.Column{
			{Title: "#", Width: 4},
			{Title: "Score", Width: 9},
			{Title: "Lines", Width: 6},
			{Title: "Lvl", Width: 4},
			{Title: "Time", Width: 9},
			{Title: "Date", Width: 12},
		}
	}

	rows := make([]table.Row, 0, len(m.games))
	for i, g := range m.games {
		rank := fmt.Sprintf("%d", i+1)
		date := g.CreatedAt.Format("Jan 02 15:04")
		if m.race {
			rows = append(rows, table.Row{
				rank, formatDuration(g.DurationMs), fmt.Sprintf("%d", g.Stats.TotalPieces),
				fmt.Sprintf("%.2f", piecesPerSecond(g)), fmt.Sprintf("%d", g.Score), date,
			})
			continue
		}
		rows = append(rows, table.Row{
			rank, fmt.Sprintf("%d", g.Score), fmt.Sprintf("%d", g.Lines),
			fmt.Sprintf("%d", g.Level), formatDuration(g.DurationMs), date,
		})
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)
	return t
}

// rankGames orders games best first. Race modes rank completed runs by time
// and drop unfinished ones; every other mode ranks by score.
func rankGames(games []storage.GameRecord, race bool) []storage.GameRecord {
	if race {
		done := games[:0:0]
		for _, g := range games {
			if g.Reason == tetris.EndCompleted {
				done = append(done, g)
			}
		}
		sort.SliceStable(done, func(i, j int) bool { return done[i].DurationMs < done[j].DurationMs })
		return done
	}
	out := append([]storage.GameRecord(nil), games...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func piecesPerSecond(g storage.GameRecord) float64 {
	if g.DurationMs <= 0 {
		return 0
	}
	return float64(g.Stats.TotalPieces) * 1000 / float64(g.DurationMs)
}

// Selected returns the highlighted game, or nil when the mode has none.
func (m ScoreboardModel) Selected() *storage.GameRecord {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.games) {
		return nil
	}
	return &m.games[i]
}

func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cursor := m.table.Cursor()
		m.table = m.newTable()
		m.table.SetCursor(cursor)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.selectMode(m.current + 1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.selectMode(m.current - 1)
			return m, nil
		case key.Matches(msg, m.keys.Details):
			m.showDetails = !m.showDetails
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	boardActiveTab  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	boardPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	boardDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "HIGH SCORES"
	if m.race {
		title = "FASTEST RUNS"
	}

	var b strings.Builder
	b.WriteString(centerText(boardTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.tabs(), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(boardDimStyle.Render(m.summaryLine()), m.width))
	b.WriteString("\n\n")

	body := m.tableView()
	if m.showDetails {
		if g := m.Selected(); g != nil {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.details(*g))
		}
	}
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// tabs renders the mode names, collapsing to "< Current >" when they do not
// fit the terminal.
func (m ScoreboardModel) tabs() string {
	if len(m.modes) == 0 {
		return ""
	}
	parts := make([]string, len(m.modes))
	for i, info := range m.modes {
		if i == m.current {
			parts[i] = boardActiveTab.Render(info.Title)
		} else {
			parts[i] = boardTabStyle.Render(info.Title)
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if lipgloss.Width(line) > m.width-2 {
		return boardActiveTab.Render("< " + m.modes[m.current].Title + " >")
	}
	return line
}

func (m ScoreboardModel) summaryLine() string {
	if m.summary == nil {
		return "no games played"
	}
	s := m.summary
	line := fmt.Sprintf("%d games · best %d · avg %.0f · %d lines", s.GamesCount, s.HighScore, s.AvgScore, s.TotalLines)
	if m.race && s.BestTimeMs > 0 {
		line = fmt.Sprintf("%d games · best time %s · %d lines", s.GamesCount, formatDuration(s.BestTimeMs), s.TotalLines)
	}
	return line
}

func (m ScoreboardModel) tableView() string {
	if len(m.games) == 0 {
		msg := "No games recorded yet.\nPlay a game to set a high score!"
		if m.race {
			msg = "No completed runs yet.\nFinish a run to set a time!"
		}
		empty := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4)
		return boardPanelStyle.Render(empty.Render(msg))
	}
	return boardPanelStyle.Render(m.table.View())
}

// details renders the line-clear breakdown of one run.
func (m ScoreboardModel) details(g storage.GameRecord) string {
	c := g.Stats.ClearCounts
	rows := [][2]string{
		{"Seed", fmt.Sprintf("%d", g.Seed)},
		{"Ended", string(g.Reason)},
		{"Pieces", fmt.Sprintf("%d", g.Stats.TotalPieces)},
		{"PPS", fmt.Sprintf("%.2f", piecesPerSecond(g))},
		{"Max combo", fmt.Sprintf("%d", g.Stats.MaxCombo)},
		{"Singles", fmt.Sprintf("%d", c.Single)},
		{"Doubles", fmt.Sprintf("%d", c.Double)},
		{"Triples", fmt.Sprintf("%d", c.Triple)},
		{"Tetrises", fmt.Sprintf("%d", c.Tetris)},
		{"T-Spins", fmt.Sprintf("%d", c.TSpin)},
		{"Perfect", fmt.Sprintf("%d", c.PerfectClear)},
	}
	var b strings.Builder
	b.WriteString(boardTitleStyle.Render("Run details"))
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%-10s %*s", r[0], detailPanelSize-15, r[1])
	}
	return boardPanelStyle.Width(detailPanelSize).Render(b.String())
}

// IsGoingBack reports whether the user asked to return to the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}
