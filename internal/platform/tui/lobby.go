package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// OnlineState is a step of the matchmaking flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // host, join or quick match
	OnlineStateHostWaiting                      // lobby open, showing its code
	OnlineStateJoinEnterCode                    // typing a join code
	OnlineStateJoinWaiting                      // join sent, waiting for the coordinator
	OnlineStateSearching                        // in the quick match queue
	OnlineStateInMatch                          // handed over to the versus screen
)

type lobbyKeys struct {
	Host    key.Binding
	Join    key.Binding
	Quick   key.Binding
	Connect key.Binding
	Cancel  key.Binding // esc only; b is a code letter
	Back    key.Binding
	Quit    key.Binding
}

func newLobbyKeys() lobbyKeys {
	return lobbyKeys{
		Host:    key.NewBinding(key.WithKeys("h", "H", "1"), key.WithHelp("h", "host")),
		Join:    key.NewBinding(key.WithKeys("j", "J", "2"), key.WithHelp("j", "join by code")),
		Quick:   key.NewBinding(key.WithKeys("m", "M", "3"), key.WithHelp("m", "quick match")),
		Connect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Back:    key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// bindings adapts a flat binding list to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

// OnlineLobbyModel walks a player through hosting, joining or quick
// matching. Coordinator events reach Update through the owning AppModel.
type OnlineLobbyModel struct {
	state         OnlineState
	width, height int

	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator

	keys lobbyKeys
	help help.Model
	code textinput.Model

	lobbyCode string
	notice    string // last coordinator error

	matchID      multiplayer.MatchID
	side         multiplayer.PlayerID
	opponentID   multiplayer.SessionID
	opponentName string

	standing *storage.Standing

	backToMenu bool
	quitting   bool
}

// NewOnlineLobbyModel creates the lobby for one session.
func NewOnlineLobbyModel(sessionID multiplayer.SessionID, coordinator *multiplayer.Coordinator, width, height int) OnlineLobbyModel {
	code := textinput.New()
	code.Prompt = ""
	code.Placeholder = strings.Repeat("·", multiplayer.CodeLength)
	code.CharLimit = multiplayer.CodeLength
	code.Width = multiplayer.CodeLength + 1

	return OnlineLobbyModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		sessionID:   sessionID,
		coordinator: coordinator,
		keys:        newLobbyKeys(),
		help:        help.New(),
		code:        code,
	}
}

// WithStanding shows the player's battle record on the lobby screen.
func (m OnlineLobbyModel) WithStanding(st storage.Standing) OnlineLobbyModel {
	m.standing = &st
	return m
}

func (m OnlineLobbyModel) Init() tea.Cmd {
	return nil
}

func (m OnlineLobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.leave()
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.state = OnlineStateHostWaiting
	case multiplayer.SearchingEvent:
		m.state = OnlineStateSearching
	case multiplayer.LobbyJoinedEvent:
		m.side = msg.Side
		m.opponentID = msg.OpponentID
		m.opponentName = msg.OpponentName
	case multiplayer.LobbyErrorEvent:
		m.notice = msg.Message
		switch m.state {
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
			return m, m.code.Focus()
		case OnlineStateHostWaiting, OnlineStateSearching:
			m.state = OnlineStateChooseMode
		}
	case multiplayer.MatchStartedEvent:
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.state = OnlineStateInMatch
		m.code.Blur()

	default:
		// cursor blink
		if m.state == OnlineStateJoinEnterCode {
			var cmd tea.Cmd
			m.code, cmd = m.code.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m OnlineLobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch m.state {
	case OnlineStateChooseMode:
		switch {
		case key.Matches(msg, k.Host):
			m.notice = ""
			m.coordinator.Send(multiplayer.CreateLobbyMsg{SessionID: m.sessionID})
		case key.Matches(msg, k.Quick):
			m.notice = ""
			m.coordinator.Send(multiplayer.QuickMatchMsg{SessionID: m.sessionID})
		case key.Matches(msg, k.Join):
			m.notice = ""
			m.state = OnlineStateJoinEnterCode
			m.code.Reset()
			return m, m.code.Focus()
		case key.Matches(msg, k.Back):
			m.backToMenu = true
		case key.Matches(msg, k.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case OnlineStateJoinEnterCode:
		return m.handleCodeKey(msg)

	case OnlineStateHostWaiting, OnlineStateJoinWaiting, OnlineStateSearching:
		switch {
		case key.Matches(msg, k.Back):
			m.leave()
			if m.state == OnlineStateJoinWaiting {
				m.state = OnlineStateJoinEnterCode
				return m, m.code.Focus()
			}
			m.state = OnlineStateChooseMode
		case key.Matches(msg, k.Quit):
			m.leave()
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleCodeKey edits the join code. Letters are upper-cased and runes that
// cannot appear in a code are dropped before they reach the input.
func (m OnlineLobbyModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.code.Blur()
		m.state = OnlineStateChooseMode
		return m, nil
	case key.Matches(msg, m.keys.Connect):
		code := multiplayer.NormalizeCode(m.code.Value())
		if len(code) != multiplayer.CodeLength {
			m.notice = fmt.Sprintf("Codes are %d characters long", multiplayer.CodeLength)
			return m, nil
		}
		m.notice = ""
		m.state = OnlineStateJoinWaiting
		m.code.Blur()
		m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: code})
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		keep := make([]rune, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if multiplayer.ValidCodeRune(r) {
				keep = append(keep, unicode.ToUpper(r))
			}
		}
		if len(keep) == 0 {
			return m, nil
		}
		msg.Runes = keep
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

// leave withdraws from the lobby or queue this session waits in.
func (m *OnlineLobbyModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting, OnlineStateJoinWaiting, OnlineStateSearching:
		m.coordinator.Send(multiplayer.LeaveMsg{SessionID: m.sessionID})
	}
}

var (
	lobbyTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	lobbyPanel     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 3)
	lobbyCodeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2)
	lobbyNotice    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	lobbyDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m OnlineLobbyModel) View() string {
	if m.quitting {
		return ""
	}

	k := m.keys
	var title string
	var body []string
	var keys bindings

	switch m.state {
	case OnlineStateChooseMode:
		title = "ONLINE BATTLE"
		body = []string{
			"Clear lines to send garbage to your opponent.",
			"",
			"[H] Host a game",
			"[J] Join a game",
			"[M] Quick match",
		}
		if st := m.standing; st != nil {
			body = append(body, "", fmt.Sprintf("Your record: %dW %dL %dD", st.Wins, st.Losses, st.Draws))
		}
		keys = bindings{k.Host, k.Join, k.Quick, k.Back, k.Quit}
	case OnlineStateHostWaiting:
		title = "HOSTING GAME"
		body = []string{"Share this code with your opponent:", "", lobbyCodeStyle.Render(m.lobbyCode), "", lobbyDim.Render("Waiting for a player to join...")}
		keys = bindings{k.Back, k.Quit}
	case OnlineStateJoinEnterCode:
		title = "JOIN GAME"
		body = []string{"Enter the game code:", "", "[ " + m.code.View() + " ]"}
		keys = bindings{k.Connect, k.Cancel}
	case OnlineStateJoinWaiting:
		title = "CONNECTING"
		body = []string{"Joining game " + lobbyCodeStyle.Render(m.code.Value()), "", lobbyDim.Render("Please wait...")}
		keys = bindings{k.Back}
	case OnlineStateSearching:
		title = "QUICK MATCH"
		body = []string{"Looking for an opponent..."}
		keys = bindings{k.Back, k.Quit}
	case OnlineStateInMatch:
		title = "MATCH STARTING"
		body = []string{fmt.Sprintf("You are %s", m.side)}
		if m.opponentName != "" {
			body = append(body, "Opponent: "+m.opponentName)
		}
		body = append(body, "", "Get ready!")
	}
	if m.notice != "" && m.state != OnlineStateInMatch {
		body = append(body, "", lobbyNotice.Render(m.notice))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, append([]string{lobbyTitle.Render(title), ""}, body...)...)
	panel := lobbyPanel.Render(content)

	var b strings.Builder
	b.WriteString("\n")
	for _, line := range strings.Split(panel, "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	if len(keys) > 0 {
		b.WriteString("\n")
		b.WriteString(centerText(lobbyDim.Render(m.help.View(keys)), m.width))
	}
	return b.String()
}

// State returns the current step of the flow.
func (m OnlineLobbyModel) State() OnlineState {
	return m.state
}

// BackToMenu reports whether the player left the lobby.
func (m OnlineLobbyModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the player asked to quit.
func (m OnlineLobbyModel) IsQuitting() bool {
	return m.quitting
}

// MatchID returns the started match, "" before one starts.
func (m OnlineLobbyModel) MatchID() multiplayer.MatchID {
	return m.matchID
}

// Side returns which player this session is in the started match.
func (m OnlineLobbyModel) Side() multiplayer.PlayerID {
	return m.side
}

// LobbyCode returns the code of the hosted lobby.
func (m OnlineLobbyModel) LobbyCode() string {
	return m.lobbyCode
}
