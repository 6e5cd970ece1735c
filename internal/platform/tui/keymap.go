package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/demonjump/internal/shell"
)

// KeyMap defines the key bindings of the shell.
type KeyMap struct {
	Start  key.Binding
	Scores key.Binding
	Retry  key.Binding
	Back   key.Binding
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Scores: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab", "leaderboard"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "retry"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save name"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// CommandFor translates a key on the given screen into a controller command.
// Returns shell.CmdNone for keys that mean nothing there.
func (k KeyMap) CommandFor(screen shell.Screen, msg tea.KeyMsg) shell.Command {
	switch screen {
	case shell.ScreenStartMenu:
		switch {
		case key.Matches(msg, k.Start):
			return shell.CmdStartGame
		case key.Matches(msg, k.Scores):
			return shell.CmdOpenLeaderboard
		}
	case shell.ScreenGameOver:
		switch {
		case key.Matches(msg, k.Retry):
			return shell.CmdRetry
		case key.Matches(msg, k.Back):
			return shell.CmdBackToMenu
		}
	case shell.ScreenLeaderboard:
		if key.Matches(msg, k.Back) {
			return shell.CmdClose
		}
	}
	return shell.CmdNone
}

// helpKeys adapts the bindings of one screen to help.KeyMap.
type helpKeys []key.Binding

// ShortHelp returns key bindings for the short help view.
func (h helpKeys) ShortHelp() []key.Binding {
	return h
}

// FullHelp returns key bindings for the full help view.
func (h helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{h}
}

// HelpFor returns the bindings worth showing on a screen.
func (k KeyMap) HelpFor(snap shell.Snapshot) helpKeys {
	if snap.PromptOpen {
		return helpKeys{k.Submit}
	}
	switch snap.Screen {
	case shell.ScreenStartMenu:
		return helpKeys{k.Start, k.Scores, k.Quit}
	case shell.ScreenGameOver:
		return helpKeys{k.Retry, k.Back, k.Quit}
	case shell.ScreenLeaderboard:
		return helpKeys{k.Up, k.Down, k.Back, k.Quit}
	default:
		return helpKeys{k.Quit}
	}
}
