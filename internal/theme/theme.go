// Package theme holds the lipgloss styles used by the CLI output.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-recurrence/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// HeaderStyle is used for section headers.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// HelpStyle is used for hints and secondary text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SuccessStyle marks completed actions.
var SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

// ErrorStyle marks failures and warnings.
var ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

// Status names rendered by StatusStyle.
const (
	StatusOpen    = "open"
	StatusOverdue = "overdue"
	StatusDone    = "done"
)

// StatusStyle returns a color-coded style for a task status name.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case StatusOpen:
		return base.Foreground(ColorBlue)
	case StatusOverdue:
		return base.Foreground(ColorRed)
	case StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryStyle renders a template category in its hex color.
func CategoryStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}
