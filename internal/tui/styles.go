package tui

import (
	"expired/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var (
	expiredColor = lipgloss.Color("#e53935")
	soonColor    = lipgloss.Color("#FFC107")
	goodColor    = lipgloss.Color("#8BC34A")
	mutedColor   = lipgloss.Color("#7a8699")
	accentColor  = lipgloss.Color("#2196F3")

	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#ffffff")).
			Background(accentColor)

	tabStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(mutedColor)

	cursorStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	emptyStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Padding(1, 2)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			MarginTop(1)

	alertStyle = dialogStyle.BorderForeground(expiredColor)

	errorStyle  = lipgloss.NewStyle().Foreground(expiredColor)
	statusStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// bucketStyle returns the row colour for an expiry bucket.
func bucketStyle(status model.ExpiryStatus) lipgloss.Style {
	switch status {
	case model.StatusExpired:
		return lipgloss.NewStyle().Foreground(expiredColor)
	case model.StatusExpiringSoon:
		return lipgloss.NewStyle().Foreground(soonColor)
	default:
		return lipgloss.NewStyle().Foreground(goodColor)
	}
}
