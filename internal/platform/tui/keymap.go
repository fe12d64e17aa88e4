package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

type commandBinding struct {
	key.Binding
	cmd tetris.Command
}

type actionBinding struct {
	key.Binding
	action core.Action
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// KeyMapper holds the play and menu bindings. The first matching binding
// wins, and screen-level actions are checked before game commands.
type KeyMapper struct {
	actions  []actionBinding
	commands []commandBinding
}

// NewKeyMapper returns the default bindings: arrows or hjkl to move and
// rotate, z for the other rotation, space to drop, c to hold.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{
		actions: []actionBinding{
			{bind("q", "quit", "ctrl+c", "q"), core.ActionQuit},
			{bind("m", "mute", "m"), core.ActionMute},
			{bind("esc", "back", "esc", "b"), core.ActionBack},
			{bind("enter", "confirm", "enter"), core.ActionConfirm},
		},
		commands: []commandBinding{
			{bind("←/h", "left", "left", "h"), tetris.CmdMoveLeft},
			{bind("→/l", "right", "right", "l"), tetris.CmdMoveRight},
			{bind("↓/j", "soft drop", "down", "j"), tetris.CmdSoftDrop},
			{bind("↑/x", "rotate", "up", "x", "k"), tetris.CmdRotateCW},
			{bind("z", "rotate back", "z"), tetris.CmdRotateCCW},
			{bind("space", "hard drop", " "), tetris.CmdHardDrop},
			{bind("c", "hold", "c"), tetris.CmdHold},
			{bind("p", "pause", "p"), tetris.CmdPause},
			{bind("r", "restart", "r"), tetris.CmdReset},
		},
	}
}

// MapKey translates a key on the play screen. At most one result is set.
// Pause always comes back as CmdPause; the caller flips it to CmdResume
// while paused.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (tetris.Command, core.Action) {
	for _, b := range km.actions {
		if key.Matches(msg, b.Binding) {
			return tetris.CmdNone, b.action
		}
	}
	for _, b := range km.commands {
		if key.Matches(msg, b.Binding) {
			return b.cmd, core.ActionNone
		}
	}
	return tetris.CmdNone, core.ActionNone
}

// ShortHelp lists the game controls for a help bar.
func (km *KeyMapper) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(km.commands))
	for _, b := range km.commands {
		out = append(out, b.Binding)
	}
	return out
}

// repeats reports whether holding the key for cmd auto-repeats.
func repeats(cmd tetris.Command) bool {
	return cmd == tetris.CmdMoveLeft || cmd == tetris.CmdMoveRight || cmd == tetris.CmdSoftDrop
}

// MenuAction is what a key does on a list screen.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

var menuBindings = []struct {
	key.Binding
	action MenuAction
}{
	{bind("q", "quit", "ctrl+c", "q"), MenuActionQuit},
	{bind("↑/k", "up", "up", "k", "w"), MenuActionUp},
	{bind("↓/j", "down", "down", "j", "s"), MenuActionDown},
	{bind("enter", "select", "enter", " "), MenuActionSelect},
	{bind("esc", "back", "esc", "b"), MenuActionBack},
}

// MapKeyToMenuAction translates a key on a menu screen.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	for _, b := range menuBindings {
		if key.Matches(msg, b.Binding) {
			return b.action
		}
	}
	return MenuActionNone
}
