package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header   lipgloss.Style
	title    lipgloss.Style
	done     lipgloss.Style
	muted    lipgloss.Style
	dragging lipgloss.Style
}

var (
	lightStyles = styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#393A4B")),
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#494C6B")),
		done:     lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#D1D2DA")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9495A5")),
		dragging: lipgloss.NewStyle().Background(lipgloss.Color("#E3E4F1")),
	}
	darkStyles = styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")),
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C8CBE7")),
		done:     lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#4D5067")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5B5E7E")),
		dragging: lipgloss.NewStyle().Background(lipgloss.Color("#393A4B")),
	}
)

// stylesFor picks the palette; the dark palette is the dark-mode marker.
func stylesFor(light bool) styles {
	if light {
		return lightStyles
	}
	return darkStyles
}
