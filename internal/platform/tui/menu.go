package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// MenuKind says what a menu entry opens.
type MenuKind int

const (
	MenuPlay MenuKind = iota
	MenuOnline
	MenuScores
	MenuReplays
	MenuStats
	MenuQuit
)

// section groups entries under a heading.
func (k MenuKind) section() string {
	switch k {
	case MenuPlay:
		return "PLAY"
	case MenuOnline:
		return "ONLINE"
	case MenuQuit:
		return ""
	default:
		return "RECORDS"
	}
}

// MenuItem is one selectable entry.
type MenuItem struct {
	Kind        MenuKind
	ModeID      string // set for MenuPlay
	Title       string
	Description string
	Best        string // personal best of the mode, "" when none
}

// MenuModel is the main menu. Digits 1-9 start the matching mode directly.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem
}

// NewMenuModel lists every registered mode followed by the other screens.
// The online entry is shown only when online play is available.
func NewMenuModel(store *storage.Store, online bool, width, height int) MenuModel {
	modeList := registry.List()
	items := make([]MenuItem, 0, len(modeList)+5)

	for _, info := range modeList {
		items = append(items, MenuItem{
			Kind:        MenuPlay,
			ModeID:      info.ID,
			Title:       info.Title,
			Description: info.Description,
			Best:        personalBest(store, info.ID),
		})
	}
	if online {
		items = append(items, MenuItem{Kind: MenuOnline, Title: "Online Battle", Description: "Send garbage to a remote opponent"})
	}
	items = append(items,
		MenuItem{Kind: MenuScores, Title: "High Scores", Description: "Best runs per mode"},
		MenuItem{Kind: MenuReplays, Title: "Replays", Description: "Watch recorded games"},
		MenuItem{Kind: MenuStats, Title: "Statistics", Description: "Trends and achievements"},
		MenuItem{Kind: MenuQuit, Title: "Quit"},
	)

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// personalBest is the fastest completed run for race modes and the high
// score for the rest.
func personalBest(store *storage.Store, modeID string) string {
	if store == nil {
		return ""
	}
	if mode, err := registry.Get(modeID); err == nil && modes.IsRace(mode) {
		st, err := store.GetModeStats(modeID)
		if err != nil || st.BestTimeMs == 0 {
			return ""
		}
		return formatDuration(st.BestTimeMs)
	}
	hs, err := store.HighScore(modeID)
	if err != nil || hs == 0 {
		return ""
	}
	return fmt.Sprintf("%d", hs)
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.items) == 0 {
		return m, nil
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(m.items) && m.items[i].Kind == MenuPlay {
			m.cursor = i
			m.selected = &m.items[i]
		}
		return m, nil
	}

	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)
	case MenuActionDown:
		m.cursor = (m.cursor + 1) % len(m.items)
	case MenuActionSelect:
		item := m.items[m.cursor]
		if item.Kind == MenuQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &item
	}
	return m, nil
}

// one color per letter, in tetromino order I O T S Z L
var logoColors = []string{"51", "226", "129", "46", "196", "208"}

var (
	menuCursor   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuSection  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Underline(true)
	menuDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func logo() string {
	letters := []rune("TETRIS")
	parts := make([]string, len(letters))
	for i, r := range letters {
		parts[i] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(logoColors[i%len(logoColors)])).Render(string(r))
	}
	return strings.Join(parts, " ")
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(logo(), m.width))
	b.WriteString("\n")

	const col = 24
	section := "-"
	for i, item := range m.items {
		if s := item.Kind.section(); s != section {
			section = s
			b.WriteString("\n")
			if s != "" {
				b.WriteString(centerText(menuSection.Render(fmt.Sprintf("%-*s", col+12, s)), m.width))
				b.WriteString("\n")
			}
		}

		label := item.Title
		if item.Kind == MenuPlay && i < 9 {
			label = fmt.Sprintf("%d %s", i+1, item.Title)
		}
		best := ""
		if item.Best != "" {
			best = "best " + item.Best
		}

		line := fmt.Sprintf("  %-*s%12s", col, label, best)
		if i == m.cursor {
			line = menuCursor.Render(fmt.Sprintf("> %-*s", col, label)) + menuDimStyle.Render(fmt.Sprintf("%12s", best))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(menuDimStyle.Render(m.items[m.cursor].Description), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(menuDimStyle.Render("↑/↓ navigate · enter select · 1-9 quick start · q quit"), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen entry, nil until one is chosen.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting reports whether the user asked to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within width, measuring printable cells.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
