package core

// Action represents a semantic UI action, abstracted from physical key presses.
type Action int

const (
	ActionNone       Action = iota
	ActionLeft              // A, Left arrow - move the drop cursor
	ActionRight             // D, Right arrow - move the drop cursor
	ActionDrop              // Space, Enter, Down - drop into the cursor column
	ActionRestart           // R - restart or propose a restart
	ActionPreset            // P - restart with the next rule preset
	ActionAccept            // Y - accept a restart request or vote to start
	ActionDecline           // N - decline a restart request or vote to go second
	ActionHost              // H - open a lobby on the relay
	ActionJoin              // J - join a lobby by id
	ActionDisconnect        // X - leave the lobby or remote game
	ActionHistory           // T - show match history
	ActionHelp              // ? - toggle full help
	ActionBack              // Esc - close a dialog
	ActionQuit              // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionDrop:
		return "Drop"
	case ActionRestart:
		return "Restart"
	case ActionPreset:
		return "Preset"
	case ActionAccept:
		return "Accept"
	case ActionDecline:
		return "Decline"
	case ActionHost:
		return "Host"
	case ActionJoin:
		return "Join"
	case ActionDisconnect:
		return "Disconnect"
	case ActionHistory:
		return "History"
	case ActionHelp:
		return "Help"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
