package shell

import "github.com/vovakirdan/demonjump/internal/storage"

// Screen is the screen currently shown to the player.
type Screen int

const (
	ScreenStartMenu Screen = iota
	ScreenPlaying
	ScreenGameOver
	ScreenLeaderboard
)

// String returns a human-readable name for the screen.
func (s Screen) String() string {
	switch s {
	case ScreenStartMenu:
		return "StartMenu"
	case ScreenPlaying:
		return "Playing"
	case ScreenGameOver:
		return "GameOver"
	case ScreenLeaderboard:
		return "Leaderboard"
	default:
		return "Unknown"
	}
}

// Command is a player intent issued by the presentation layer.
type Command int

const (
	CmdNone            Command = iota
	CmdStartGame               // Start menu: begin a game
	CmdOpenLeaderboard         // Start menu: show the top scores
	CmdRetry                   // Game over: play again
	CmdBackToMenu              // Game over: return to the start menu
	CmdClose                   // Leaderboard: return to the start menu
)

// String returns a human-readable name for the command.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "None"
	case CmdStartGame:
		return "StartGame"
	case CmdOpenLeaderboard:
		return "OpenLeaderboard"
	case CmdRetry:
		return "Retry"
	case CmdBackToMenu:
		return "BackToMenu"
	case CmdClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// SaveStatus tracks the leaderboard write for the last finished game.
type SaveStatus int

const (
	SaveNone         SaveStatus = iota // No finished game yet, or a new one started
	SaveAwaitingName                   // Held until the player picks a name
	SaveSaving                         // Insert in flight
	SaveSaved
	SaveFailed
)

// String returns a human-readable name for the status.
func (s SaveStatus) String() string {
	switch s {
	case SaveNone:
		return "None"
	case SaveAwaitingName:
		return "AwaitingName"
	case SaveSaving:
		return "Saving"
	case SaveSaved:
		return "Saved"
	case SaveFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Snapshot is an immutable copy of the controller state handed to observers.
type Snapshot struct {
	Screen Screen
	Score  int

	UserID      string
	Username    string
	HasUsername bool

	// PromptOpen is set while a finished game waits for a player name.
	// The prompt cannot be dismissed without a valid name.
	PromptOpen  bool
	PromptError string

	Save SaveStatus

	// Leaderboard holds the latest ranking while the leaderboard screen is open.
	Leaderboard []storage.ScoreRecord
}
