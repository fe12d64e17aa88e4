package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// VersusModel shows both boards of a running battle and forwards this
// player's commands to the match.
type VersusModel struct {
	coordinator *multiplayer.Coordinator
	sessionID   multiplayer.SessionID
	matchID     multiplayer.MatchID
	side        multiplayer.PlayerID
	mode        tetris.Mode

	screen *core.Screen
	keys   *KeyMapper
	repeat *core.Repeater[tetris.Command]
	now    func() time.Time

	snap     multiplayer.BattleSnapshot
	hasSnap  bool
	ended    *multiplayer.MatchEndedEvent
	back     bool
	quitting bool
}

// NewVersusModel creates the versus screen for a started match.
func NewVersusModel(
	coordinator *multiplayer.Coordinator,
	sessionID multiplayer.SessionID,
	matchID multiplayer.MatchID,
	side multiplayer.PlayerID,
	das, arr, width, height int,
) VersusModel {
	return VersusModel{
		coordinator: coordinator,
		sessionID:   sessionID,
		matchID:     matchID,
		side:        side,
		mode:        tetris.Mode{ID: multiplayer.BattleModeID, Title: "Battle"},
		screen:      core.NewScreen(width, height),
		keys:        NewKeyMapper(),
		repeat:      core.NewRepeater[tetris.Command](das, arr),
		now:         time.Now,
	}
}

// Init initializes the model.
func (m VersusModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m VersusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
	case multiplayer.SnapshotEvent:
		if msg.MatchID == m.matchID {
			m.snap = msg.Snapshot
			m.hasSnap = true
		}
	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID {
			ended := msg
			m.ended = &ended
		}
	}
	return m, nil
}

func (m VersusModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := m.keys.MapKey(msg)

	switch action {
	case core.ActionQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.leave()
		m.back = true
		return m, nil
	}

	if m.ended != nil || cmd == tetris.CmdNone {
		return m, nil
	}
	if repeats(cmd) {
		if !m.repeat.Press(cmd, m.now().UnixMilli()) {
			return m, nil
		}
	} else {
		m.repeat.Reset()
	}

	m.coordinator.Send(multiplayer.PlayerInputMsg{
		MatchID:  m.matchID,
		Player:   m.side,
		Commands: []tetris.Command{cmd},
	})
	return m, nil
}

func (m *VersusModel) leave() {
	if m.ended == nil {
		m.coordinator.Send(multiplayer.LeaveMsg{SessionID: m.sessionID})
	}
}

// View renders both boards, own board on the left.
func (m VersusModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	s := m.screen
	s.Clear()
	full := core.NewRect(0, 0, s.Width(), s.Height())

	if !m.hasSnap {
		s.DrawTextCentered(full, s.Height()/2, "Waiting for the first frame...", core.ColorGray)
		return RenderScreen(s)
	}

	own, opp := m.snap.For(m.side)
	oppSide := m.side.Opponent()

	gap := 3
	x := max(0, (s.Width()-gameLayoutW-gap-wellW)/2)
	ownView := GameView{
		Snapshot: own,
		Mode:     m.mode,
		Ghost:    true,
		Title:    "YOU",
		Pending:  m.snap.Pending[m.side.Index()],
		Extra:    []string{fmt.Sprintf("SENT %d", m.snap.Sent[m.side.Index()])},
	}
	if m.ended != nil {
		ownView.Overlay = m.resultLines()
	}
	drawGame(s, x, 2, ownView)

	// the opponent gets a compact well without side panels
	oppWell := wellRect(x+gameLayoutW+gap, 2)
	drawWell(s, oppWell, opp, false)
	s.DrawTextCentered(oppWell, 1, fmt.Sprintf("OPPONENT %d", opp.Score), core.ColorBrightYellow)
	s.DrawTextCentered(oppWell, oppWell.Bottom(), fmt.Sprintf("L%d  %d lines  sent %d",
		opp.Level, opp.Lines, m.snap.Sent[oppSide.Index()]), core.ColorGray)
	if n := min(m.snap.Pending[oppSide.Index()], tetris.BoardRows); n > 0 {
		for i := range n {
			s.SetCell(oppWell.Right(), oppWell.Bottom()-2-i, core.Cell{Rune: '▐', Color: core.ColorBrightRed})
		}
	}

	s.DrawTextCentered(full, s.Height()-1, "←→ move  ↑/x z rotate  ↓ soft  space drop  c hold  esc leave  q quit", core.ColorGray)
	return RenderScreen(s)
}

func (m VersusModel) resultLines() []string {
	e := m.ended
	title := "DRAW"
	switch e.Winner {
	case m.side:
		title = "YOU WIN!"
	case m.side.Opponent():
		title = "YOU LOSE"
	}
	return []string{title, "", e.Reason.Message(), "", "Esc menu"}
}

// BackToMenu returns true if user left the versus screen.
func (m VersusModel) BackToMenu() bool {
	return m.back
}

// IsQuitting returns true if user requested to quit entirely.
func (m VersusModel) IsQuitting() bool {
	return m.quitting
}

// Ended returns the match result once the match is over, nil before.
func (m VersusModel) Ended() *multiplayer.MatchEndedEvent {
	return m.ended
}
