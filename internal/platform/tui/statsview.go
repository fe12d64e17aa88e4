package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/stats"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

const statsHistory = 1000

var statsRanges = []stats.Range{stats.RangeDay, stats.RangeWeek, stats.RangeMonth, stats.RangeAll}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// StatsModel shows the analytics report and achievement progress.
type StatsModel struct {
	store     *storage.Store
	defs      []achievements.Definition
	unlocked  map[string]time.Time
	records   []storage.GameRecord
	rangeIdx  int
	report    stats.Report
	err       error
	width     int
	height    int
	goingBack bool
	quitting  bool
	now       func() time.Time
}

// NewStatsModel loads the stored games and achievements.
func NewStatsModel(store *storage.Store, defs []achievements.Definition, width, height int) StatsModel {
	m := StatsModel{
		store:    store,
		defs:     defs,
		unlocked: make(map[string]time.Time),
		rangeIdx: 1,
		width:    width,
		height:   height,
		now:      time.Now,
	}
	if store != nil {
		m.records, m.err = store.Games("", statsHistory)
		if list, err := store.Achievements(); err == nil {
			for _, a := range list {
				m.unlocked[a.ID] = a.UnlockedAt
			}
		}
	}
	m.analyze()
	return m
}

func (m *StatsModel) analyze() {
	m.report = stats.Analyze(m.records, statsRanges[m.rangeIdx], m.now())
}

// Init initializes the model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "esc", "b":
			m.goingBack = true
		case "tab", "right", "l":
			m.rangeIdx = (m.rangeIdx + 1) % len(statsRanges)
			m.analyze()
		case "shift+tab", "left", "h":
			m.rangeIdx = (m.rangeIdx + len(statsRanges) - 1) % len(statsRanges)
			m.analyze()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the report.
func (m StatsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(panelTitle.Render(centerText("STATISTICS", m.width)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.err.Error())
		return b.String()
	}

	r := m.report
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.basicPanel(r)),
		" ",
		panelStyle.Render(m.piecesPanel(r)),
		" ",
		panelStyle.Render(m.achievementsPanel()),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.modesPanel(r)),
		" ",
		panelStyle.Render(m.trendPanel(r)),
	)
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(bottom)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab: change range  |  esc: back  |  q: quit"))
	return b.String()
}

func (m StatsModel) basicPanel(r stats.Report) string {
	lines := []string{
		panelTitle.Render("Overall"),
		fmt.Sprintf("Games      %d", r.Basic.Games),
		fmt.Sprintf("Best score %d", r.Basic.BestScore),
		fmt.Sprintf("Avg score  %d", r.Basic.AverageScore),
		fmt.Sprintf("Lines      %d", r.Basic.TotalLines),
		fmt.Sprintf("Max level  %d", r.Basic.MaxLevel),
		fmt.Sprintf("Play time  %s", formatDuration(r.Basic.TotalPlayMs)),
		"",
		panelTitle.Render("Clears"),
		fmt.Sprintf("Single %d  Double %d", r.Clears.Single, r.Clears.Double),
		fmt.Sprintf("Triple %d  Tetris %d", r.Clears.Triple, r.Clears.Tetris),
		fmt.Sprintf("T-Spin %d  Perfect %d", r.Clears.TSpin, r.Clears.PerfectClear),
	}
	return strings.Join(lines, "\n")
}

func (m StatsModel) piecesPanel(r stats.Report) string {
	lines := []string{panelTitle.Render("Pieces")}
	for _, p := range r.Pieces {
		bar := strings.Repeat("█", p.Percentage/5)
		color := colorStyles[PieceColor(p.Piece)]
		lines = append(lines, fmt.Sprintf("%s %3d%% %s", p.Piece, p.Percentage, color.Render(bar)))
	}
	lines = append(lines, "", panelTitle.Render("Game length"))
	for _, bucket := range r.Duration {
		lines = append(lines, fmt.Sprintf("%-8s %d", bucket.Label, bucket.Games))
	}
	return strings.Join(lines, "\n")
}

func (m StatsModel) achievementsPanel() string {
	lines := []string{panelTitle.Render("Achievements")}
	var ids []string
	for _, d := range m.defs {
		if at, ok := m.unlocked[d.ID]; ok {
			ids = append(ids, d.ID)
			lines = append(lines, goodStyle.Render(fmt.Sprintf("✓ %s", d.Title))+mutedStyle.Render(" "+at.Format("Jan 02")))
		} else {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("· %s", d.Title)))
		}
		lines = append(lines, mutedStyle.Render("  "+d.Description))
	}
	lines = append(lines, "", fmt.Sprintf("Points %d", achievements.Points(m.defs, ids)))
	return strings.Join(lines, "\n")
}

func (m StatsModel) modesPanel(r stats.Report) string {
	lines := []string{panelTitle.Render("Modes")}
	for _, ms := range r.Modes {
		line := fmt.Sprintf("%-9s %3d games  best %d", ms.Mode, ms.Games, ms.BestScore)
		if ms.BestTimeMs > 0 {
			line += "  " + formatDuration(ms.BestTimeMs)
		}
		lines = append(lines, line)
	}
	if len(r.Modes) == 0 {
		lines = append(lines, mutedStyle.Render("no games yet"))
	}
	return strings.Join(lines, "\n")
}

func (m StatsModel) trendPanel(r stats.Report) string {
	lines := []string{panelTitle.Render(fmt.Sprintf("Trend (%s)", statsRanges[m.rangeIdx]))}
	points := r.Trends.Points
	if len(points) > 7 {
		points = points[len(points)-7:]
	}
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%s  %2d games  avg %d", p.Date, p.Games, p.Score))
	}
	if len(points) >= 2 {
		lines = append(lines, "", fmt.Sprintf("score %+d%%  lines %+d%%", r.Trends.Change.Score, r.Trends.Change.Lines))
	}
	return strings.Join(lines, "\n")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m StatsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m StatsModel) IsQuitting() bool {
	return m.quitting
}
