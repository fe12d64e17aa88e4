package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/audio"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

const (
	// maxTickMs caps the time fed to the engine after a stall, so a
	// suspended terminal does not drop pieces on resume.
	maxTickMs     = 250
	toastDuration = 3 * time.Second
)

// GameSetup is everything needed to start a single-player game.
type GameSetup struct {
	Mode         tetris.Mode
	Rules        tetris.Rules
	Seed         int64 // 0 picks a time-based seed
	TickRate     int
	DAS, ARR     int
	Achievements []achievements.Definition
}

// NewGameSetup builds a setup from configuration and a registered mode.
func NewGameSetup(cfg config.TetrisConfig, mode tetris.Mode, seed int64, tickRate int) GameSetup {
	return GameSetup{
		Mode:         cfg.ApplyMode(mode),
		Rules:        cfg.Rules(),
		Seed:         seed,
		TickRate:     tickRate,
		DAS:          cfg.Input.DAS,
		ARR:          cfg.Input.ARR,
		Achievements: achievements.FromConfig(cfg.Achievements),
	}
}

// GameResult is the persisted outcome of a finished game.
type GameResult struct {
	Summary  tetris.Summary
	ReplayID string
	NewBest  bool
	Err      error // persistence failure, the game itself is unaffected
}

type toast struct {
	text  string
	until time.Time
}

// GameModel is the Bubble Tea model for one single-player game.
type GameModel struct {
	setup    GameSetup
	session  *tetris.Session
	recorder *replay.Recorder
	tracker  *achievements.Tracker
	sound    *audio.Player
	store    *storage.Store
	screen   *core.Screen
	keys     *KeyMapper
	repeat   *core.Repeater[tetris.Command]

	now      func() time.Time
	lastTick time.Time

	toasts     []toast
	result     *GameResult
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game model. store and sound may be nil.
func NewGameModel(setup GameSetup, store *storage.Store, sound *audio.Player, width, height int) GameModel {
	if setup.Seed == 0 {
		setup.Seed = time.Now().UnixNano()
	}

	session := tetris.NewSession(tetris.Options{
		Seed:  setup.Seed,
		Mode:  setup.Mode,
		Rules: setup.Rules,
	})

	rules := setup.Rules
	recorder := replay.NewRecorder(&rules)
	recorder.Attach(session)

	var already []string
	if store != nil {
		if unlocked, err := store.Achievements(); err == nil {
			for _, a := range unlocked {
				already = append(already, a.ID)
			}
		}
	}
	tracker := achievements.NewTracker(setup.Achievements, already)
	tracker.Attach(session)

	if sound != nil {
		session.Subscribe(sound.Observe)
	}

	m := GameModel{
		setup:    setup,
		session:  session,
		recorder: recorder,
		tracker:  tracker,
		sound:    sound,
		store:    store,
		screen:   core.NewScreen(width, height),
		keys:     NewKeyMapper(),
		repeat:   core.NewRepeater[tetris.Command](setup.DAS, setup.ARR),
		now:      time.Now,
	}
	m.lastTick = m.now()
	return m
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.setup.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	cmd, action := m.keys.MapKey(msg)
	status := m.session.Status()

	switch action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionMute:
		if m.sound != nil {
			m.sound.ToggleMute()
		}
		return m, nil
	case core.ActionBack:
		if status == tetris.StatusRunning {
			m.session.ApplyCommand(tetris.CmdPause)
		} else {
			m.backToMenu = true
		}
		return m, nil
	}

	if cmd == tetris.CmdNone {
		return m, nil
	}
	if cmd == tetris.CmdPause && status == tetris.StatusPaused {
		cmd = tetris.CmdResume
		// wall time spent paused is not owed to the engine
		m.lastTick = m.now()
	}

	if repeats(cmd) {
		if !m.repeat.Press(cmd, m.now().UnixMilli()) {
			return m, nil
		}
	} else {
		m.repeat.Reset()
	}

	m.session.ApplyCommand(cmd)
	m.afterStep()
	return m, nil
}

// handleTick feeds measured wall time into the engine.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	now := m.now()
	elapsed := min(int(now.Sub(m.lastTick).Milliseconds()), maxTickMs)
	m.lastTick = now

	m.session.Tick(elapsed)
	m.afterStep()

	live := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.until) {
			live = append(live, t)
		}
	}
	m.toasts = live

	return m, tickCmd(m.setup.TickRate)
}

// afterStep records unlocks and persists the game the first time it is seen
// over. A reset out of game over arms persistence again.
func (m *GameModel) afterStep() {
	for _, d := range m.tracker.Drain() {
		m.toasts = append(m.toasts, toast{
			text:  fmt.Sprintf("Achievement: %s (+%d)", d.Title, d.Points),
			until: m.now().Add(toastDuration),
		})
		if m.store != nil {
			//nolint:errcheck // Best-effort save, the game continues regardless
			m.store.UnlockAchievement(d.ID)
		}
	}

	if m.session.Status() != tetris.StatusGameOver {
		m.result = nil
		return
	}
	if m.result == nil {
		r := persistGame(m.store, m.session.Summary(), m.recorder.Finish())
		m.result = &r
	}
}

// persistGame stores the finished game, its score and its replay.
func persistGame(store *storage.Store, sum tetris.Summary, rep *replay.Replay) GameResult {
	res := GameResult{Summary: sum}
	if store == nil {
		return res
	}

	best, err := store.HighScore(sum.Mode)
	if err == nil {
		res.NewBest = sum.Score > 0 && sum.Score > best
	}

	var errs []error
	if _, err := store.SaveGame(sum); err != nil {
		errs = append(errs, err)
	}
	if id, err := store.SaveReplay(rep); err != nil {
		errs = append(errs, err)
	} else {
		res.ReplayID = id
	}
	res.Err = errors.Join(errs...)
	return res
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.render()

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".tetris", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.setup.Mode.ID, timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// endTitle names the way a session ended.
func endTitle(reason tetris.EndReason) string {
	switch reason {
	case tetris.EndCompleted:
		return "COMPLETE!"
	case tetris.EndTimeUp:
		return "TIME UP"
	default:
		return "GAME OVER"
	}
}

func (m *GameModel) overlay() []string {
	switch {
	case m.result != nil:
		sum := m.result.Summary
		lines := []string{endTitle(sum.Reason), "", fmt.Sprintf("Score %d", sum.Score)}
		if sum.Reason == tetris.EndCompleted && modes.IsRace(m.setup.Mode) {
			lines = append(lines, "Time "+formatDuration(sum.DurationMs))
		}
		if m.result.NewBest {
			lines = append(lines, "NEW BEST!")
		}
		if m.result.Err != nil {
			lines = append(lines, "(not saved)")
		}
		return append(lines, "", "R retry", "Esc menu")
	case m.session.Status() == tetris.StatusPaused:
		return []string{"PAUSED", "", "P resume", "Esc menu"}
	}
	return nil
}

func (m *GameModel) render() {
	s := m.screen
	s.Clear()

	x := max(0, (s.Width()-gameLayoutW)/2)
	y := 2
	view := GameView{
		Snapshot: m.session.State(),
		Mode:     m.setup.Mode,
		Ghost:    true,
		Title:    "T E T R I S",
		Overlay:  m.overlay(),
	}
	if m.sound != nil && !m.sound.Enabled() {
		view.Extra = append(view.Extra, "muted")
	}
	drawGame(s, x, y, view)

	for i, t := range m.toasts {
		s.DrawTextCentered(core.NewRect(0, 0, s.Width(), s.Height()), y+wellH+1+i, t.text, core.ColorBrightGreen)
	}
	help := "←→ move  ↑/x z rotate  ↓ soft  space drop  c hold  p pause  m mute  q quit"
	s.DrawTextCentered(core.NewRect(0, 0, s.Width(), s.Height()), s.Height()-1, help, core.ColorGray)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Result returns the persisted outcome once the game is over, nil before.
func (m GameModel) Result() *GameResult {
	return m.result
}

// Snapshot returns the current engine state.
func (m GameModel) Snapshot() tetris.Snapshot {
	return m.session.State()
}
