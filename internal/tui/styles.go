package tui

import "github.com/charmbracelet/lipgloss"

var (
	Ink    = lipgloss.Color("#1f1b24")
	Blush  = lipgloss.Color("#f4c2c2")
	Rose   = lipgloss.Color("#d6336c")
	Sage   = lipgloss.Color("#8bc34a")
	Slate  = lipgloss.Color("#6b7280")
	Danger = lipgloss.Color("#e53935")
)

// Styles groups the swipe screen styles.
type Styles struct {
	Title       lipgloss.Style
	Progress    lipgloss.Style
	Card        lipgloss.Style
	Placeholder lipgloss.Style
	OutfitName  lipgloss.Style
	Tags        lipgloss.Style
	Help        lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Spinner     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Rose),
		Progress: lipgloss.NewStyle().Foreground(Slate),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Blush).
			Padding(0, 1),
		Placeholder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Slate).
			Foreground(Slate).
			Padding(0, 1),
		OutfitName: lipgloss.NewStyle().Bold(true).Foreground(Ink),
		Tags:       lipgloss.NewStyle().Foreground(Slate).Italic(true),
		Help:       lipgloss.NewStyle().Foreground(Slate),
		Status:     lipgloss.NewStyle().Foreground(Sage),
		Error:      lipgloss.NewStyle().Foreground(Danger),
		Spinner:    lipgloss.NewStyle().Foreground(Rose),
	}
}
