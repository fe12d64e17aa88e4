package tetris

// Command is a logical player command.
type Command int

const (
	CmdNone Command = iota
	CmdMoveLeft
	CmdMoveRight
	CmdSoftDrop
	CmdHardDrop
	CmdRotateCW
	CmdRotateCCW
	CmdHold
	CmdPause
	CmdResume
	CmdReset
)

var commandNames = [...]string{
	CmdNone:      "none",
	CmdMoveLeft:  "moveLeft",
	CmdMoveRight: "moveRight",
	CmdSoftDrop:  "softDrop",
	CmdHardDrop:  "hardDrop",
	CmdRotateCW:  "rotateCW",
	CmdRotateCCW: "rotateCCW",
	CmdHold:      "hold",
	CmdPause:     "pause",
	CmdResume:    "resume",
	CmdReset:     "reset",
}

// String returns the wire name of the command.
func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// ParseCommand converts a wire name back into a Command.
func ParseCommand(s string) (Command, bool) {
	for i := CmdMoveLeft; i <= CmdReset; i++ {
		if commandNames[i] == s {
			return i, true
		}
	}
	return CmdNone, false
}

// LastAction records whether the most recent successful manipulation was a
// translation or a rotation.
type LastAction int

const (
	ActionNone LastAction = iota
	ActionMove
	ActionRotate
)

// String returns the action name.
func (a LastAction) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionRotate:
		return "rotate"
	default:
		return "none"
	}
}
