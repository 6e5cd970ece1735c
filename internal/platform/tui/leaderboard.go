package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/demonjump/internal/storage"
)

// Leaderboard layout constants
const (
	tableMinHeight = 5
	rankWidth      = 6
	scoreWidth     = 10
	dateWidth      = 14
	nameMinWidth   = 16
)

// newLeaderboardTable creates a table sized to the terminal.
func newLeaderboardTable(width, height int) table.Model {
	nameWidth := width - 4 - rankWidth - scoreWidth - dateWidth - 8 // Margins and cell padding
	if nameWidth < nameMinWidth {
		nameWidth = nameMinWidth
	}

	columns := []table.Column{
		{Title: "Rank", Width: rankWidth},
		{Title: "Player", Width: nameWidth},
		{Title: "Score", Width: scoreWidth},
		{Title: "Date", Width: dateWidth},
	}

	tableHeight := height - 8 // Leave room for title, help, and margins
	if tableHeight < tableMinHeight {
		tableHeight = tableMinHeight
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// leaderboardRows converts a ranking to table rows. The player's own
// records are marked.
func leaderboardRows(records []storage.ScoreRecord, userID string) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		name := r.Username
		if userID != "" && r.UserID == userID {
			name += " *"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			name,
			fmt.Sprintf("%d", r.Score),
			r.AchievedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// renderLeaderboard renders the leaderboard screen body.
func renderLeaderboard(t table.Model, empty bool, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var content string
	if empty {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		content = emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	} else {
		content = t.View()
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, tableStyle.Render(content)))
	return b.String()
}
