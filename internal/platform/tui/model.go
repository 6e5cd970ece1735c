package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/demonjump/internal/identity"
	"github.com/vovakirdan/demonjump/internal/shell"
)

// snapshotMsg carries a new controller state into Bubble Tea.
type snapshotMsg shell.Snapshot

// sessionClosedMsg is sent once the session stops producing snapshots.
type sessionClosedMsg struct{}

// Model is the Bubble Tea model for one player's session. It only renders
// snapshots and turns keys into commands; all state lives in the controller.
type Model struct {
	session *Session
	snap    shell.Snapshot

	keys  KeyMap
	help  help.Model
	input textinput.Model
	table table.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates the view for session.
func NewModel(session *Session, width, height int) Model {
	in := textinput.New()
	in.Placeholder = "your name"
	in.Prompt = "> "
	in.CharLimit = identity.MaxUsernameLen * 2 // Room for surrounding spaces, trimmed on save
	in.Width = identity.MaxUsernameLen + 2

	h := help.New()
	h.ShowAll = false
	h.Width = width

	return Model{
		session: session,
		keys:    DefaultKeyMap(),
		help:    h,
		input:   in,
		table:   newLeaderboardTable(width, height),
		width:   width,
		height:  height,
	}
}

// Init starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), textinput.Blink)
}

// waitForSnapshot returns a command that waits for the next controller state.
func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.session.Snapshots()
		if !ok {
			return sessionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		return m.applySnapshot(shell.Snapshot(msg))

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = newLeaderboardTable(msg.Width, msg.Height)
		m.table.SetRows(leaderboardRows(m.snap.Leaderboard, m.snap.UserID))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.snap.PromptOpen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applySnapshot adopts a new controller state.
func (m Model) applySnapshot(snap shell.Snapshot) (tea.Model, tea.Cmd) {
	wasPrompt := m.snap.PromptOpen
	m.snap = snap

	var focus tea.Cmd
	switch {
	case snap.PromptOpen && !wasPrompt:
		m.input.Reset()
		focus = m.input.Focus()
	case !snap.PromptOpen && wasPrompt:
		m.input.Blur()
	}

	if snap.Screen == shell.ScreenLeaderboard {
		m.table.SetRows(leaderboardRows(snap.Leaderboard, snap.UserID))
	} else if len(m.table.Rows()) > 0 {
		m.table.SetRows(nil)
		m.table.GotoTop()
	}

	return m, tea.Batch(focus, m.waitForSnapshot())
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// The name prompt takes every key until a valid name is saved.
	if m.snap.PromptOpen {
		if key.Matches(msg, m.keys.Submit) {
			m.session.SubmitUsername(m.input.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.snap.Screen == shell.ScreenLeaderboard &&
		(key.Matches(msg, m.keys.Up) || key.Matches(msg, m.keys.Down)) {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	if cmd := m.keys.CommandFor(m.snap.Screen, msg); cmd != shell.CmdNone {
		m.session.Dispatch(cmd)
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.snap.Screen {
	case shell.ScreenPlaying:
		body = renderPlaying(m.snap, m.width)
	case shell.ScreenGameOver:
		body = renderGameOver(m.snap, m.input, m.width)
	case shell.ScreenLeaderboard:
		body = renderLeaderboard(m.table, len(m.snap.Leaderboard) == 0, m.width)
	default:
		body = renderStartMenu(m.snap, m.width)
	}

	return body + "\n\n" + helpStyle.Render(centerText(m.help.View(m.keys.HelpFor(m.snap)), m.width))
}

// Run starts the Bubble Tea program for session and blocks until the player quits.
func Run(ctx context.Context, session *Session, width, height int) error {
	p := tea.NewProgram(
		NewModel(session, width, height),
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
