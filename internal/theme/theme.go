// Package theme maps theme preferences to terminal color palettes.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keysprint/internal/model"
)

// Palette holds the colors used by the typing and stats views.
type Palette struct {
	Correct     lipgloss.Color
	Incorrect   lipgloss.Color
	Pending     lipgloss.Color
	CurrentWord lipgloss.Color
	Muted       lipgloss.Color
	Accent      lipgloss.Color
	Border      lipgloss.Color
}

// Dark is the palette for dark terminals.
var Dark = Palette{
	Correct:     lipgloss.Color("#F0F0F0"),
	Incorrect:   lipgloss.Color("#FF4D4F"),
	Pending:     lipgloss.Color("#8C8C8C"),
	CurrentWord: lipgloss.Color("#C89A3A"),
	Muted:       lipgloss.Color("#6E6E6E"),
	Accent:      lipgloss.Color("#C89A3A"),
	Border:      lipgloss.Color("#4A4A4A"),
}

// Light is the palette for light terminals.
var Light = Palette{
	Correct:     lipgloss.Color("#1F1F1F"),
	Incorrect:   lipgloss.Color("#D4380D"),
	Pending:     lipgloss.Color("#A0A0A0"),
	CurrentWord: lipgloss.Color("#8A5A00"),
	Muted:       lipgloss.Color("#7A7A7A"),
	Accent:      lipgloss.Color("#8A5A00"),
	Border:      lipgloss.Color("#C8C8C8"),
}

// Resolve picks the palette for t. ThemeSystem follows the terminal background.
func Resolve(t model.Theme) Palette {
	return resolve(t, lipgloss.HasDarkBackground)
}

func resolve(t model.Theme, hasDark func() bool) Palette {
	switch t {
	case model.ThemeLight:
		return Light
	case model.ThemeDark:
		return Dark
	default:
		if hasDark() {
			return Dark
		}
		return Light
	}
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Correct     lipgloss.Style
	Incorrect   lipgloss.Style
	Pending     lipgloss.Style
	CurrentWord lipgloss.Style
	Cursor      lipgloss.Style
	Footer      lipgloss.Style
	Panel       lipgloss.Style
	Title       lipgloss.Style
	Error       lipgloss.Style
}

// NewStyles builds styles from p.
func NewStyles(p Palette) Styles {
	pending := lipgloss.NewStyle().Foreground(p.Pending)
	return Styles{
		Correct:     lipgloss.NewStyle().Foreground(p.Correct),
		Incorrect:   lipgloss.NewStyle().Foreground(p.Incorrect),
		Pending:     pending,
		CurrentWord: lipgloss.NewStyle().Foreground(p.CurrentWord),
		Cursor:      pending.Underline(true),
		Footer:      lipgloss.NewStyle().Foreground(p.Muted),
		Panel: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.Border),
		Title: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Error: lipgloss.NewStyle().Foreground(p.Incorrect),
	}
}
