package components

import (
	"strings"

	"netmonlabs/netmon/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// StatusLevel selects the colour of a status message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarn
	StatusError
)

// StatusBar renders a status line between the content and footer: message
// on the left, detail right-aligned. The detail is dropped when both do not
// fit.
func StatusBar(width int, message, detail string, level StatusLevel) string {
	if message == "" && detail == "" {
		return ""
	}

	style := styles.MutedText
	switch level {
	case StatusWarn:
		style = styles.WarningText
	case StatusError:
		style = styles.ErrorText
	}

	left := style.Render(message)
	inner := width - 4
	if detail != "" {
		right := styles.MutedText.Render(detail)
		if gap := inner - lipgloss.Width(left) - lipgloss.Width(right); gap >= 2 {
			left += strings.Repeat(" ", gap) + right
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(left)
}
