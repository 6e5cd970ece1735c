// Package tui provides the Bubble Tea integration for demonjump.
// It renders controller snapshots, maps keys to commands and serves sessions over SSH.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/demonjump/internal/identity"
	"github.com/vovakirdan/demonjump/internal/shell"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(1, 2)
)

// renderStartMenu renders the start menu.
func renderStartMenu(snap shell.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("D E M O N   J U M P", width)))
	b.WriteString("\n\n")

	greeting := "New player"
	if snap.HasUsername {
		greeting = "Welcome back, " + snap.Username
	}
	b.WriteString(dimStyle.Render(centerText(greeting, width)))
	b.WriteString("\n\n")

	b.WriteString(centerText("Enter: Play", width))
	b.WriteString("\n")
	b.WriteString(centerText("Tab: Leaderboard", width))

	return b.String()
}

// renderPlaying renders the HUD while a game runs.
func renderPlaying(snap shell.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(centerText("SCORE", width)))
	b.WriteString("\n")
	b.WriteString(scoreStyle.Render(centerText(fmt.Sprintf("%d", snap.Score), width)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(centerText("game in progress", width)))

	return b.String()
}

// renderGameOver renders the final score, the save status and the name prompt.
func renderGameOver(snap shell.Snapshot, input textinput.Model, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("GAME OVER", width)))
	b.WriteString("\n\n")
	b.WriteString(scoreStyle.Render(centerText(fmt.Sprintf("Final score: %d", snap.Score), width)))
	b.WriteString("\n\n")

	if snap.PromptOpen {
		var p strings.Builder
		p.WriteString(fmt.Sprintf("Enter your name to record this score (%d-%d characters)",
			identity.MinUsernameLen, identity.MaxUsernameLen))
		p.WriteString("\n\n")
		p.WriteString(input.View())
		if snap.PromptError != "" {
			p.WriteString("\n\n")
			p.WriteString(errorStyle.Render(snap.PromptError))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, promptStyle.Render(p.String())))
		return b.String()
	}

	switch snap.Save {
	case shell.SaveSaving:
		b.WriteString(dimStyle.Render(centerText("Saving score...", width)))
	case shell.SaveSaved:
		b.WriteString(okStyle.Render(centerText("Score saved as "+snap.Username, width)))
	case shell.SaveFailed:
		b.WriteString(errorStyle.Render(centerText("Score not saved", width)))
	}

	return b.String()
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
