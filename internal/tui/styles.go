package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorAccent = lipgloss.Color("#7D56F4")
	ColorLegal  = lipgloss.Color("#04B575")
	ColorWarn   = lipgloss.Color("#FFB86C")
	ColorMuted  = lipgloss.Color("#626262")
)

// Styles groups the lipgloss styles used by the view.
type Styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	Hint     lipgloss.Style
	Warn     lipgloss.Style
	Help     lipgloss.Style
	Slot     lipgloss.Style
	Cursor   lipgloss.Style
	Legal    lipgloss.Style
	Selected lipgloss.Style
	Pane     lipgloss.Style
}

// DefaultStyles returns the player styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Status:   lipgloss.NewStyle().Bold(true),
		Hint:     lipgloss.NewStyle().Foreground(ColorLegal),
		Warn:     lipgloss.NewStyle().Foreground(ColorWarn),
		Help:     lipgloss.NewStyle().Foreground(ColorMuted),
		Slot:     lipgloss.NewStyle().Width(slotWidth).Align(lipgloss.Center),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Legal:    lipgloss.NewStyle().Underline(true).Bold(true).Foreground(ColorLegal),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(ColorWarn),
		Pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted),
	}
}
