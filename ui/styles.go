package ui

import "github.com/charmbracelet/lipgloss"

var (
	faintFg   = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	labelFg   = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#9B9B9B"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	statusBg  = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
	statusFg  = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	faintStyle    = lipgloss.NewStyle().Foreground(faintFg)
	labelStyle    = lipgloss.NewStyle().Foreground(labelFg).Width(11)
	recordingDot  = lipgloss.NewStyle().Foreground(red).Bold(true).Render("●")
	statusStyle   = lipgloss.NewStyle().Foreground(statusFg).Background(statusBg).Padding(0, 1)
	statusOKStyle = lipgloss.NewStyle().Foreground(mintGreen).Background(darkGreen).Padding(0, 1)
	statusErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(red).Padding(0, 1)
)

// styles holds the styles derived from the configured accent color.
type styles struct {
	title    lipgloss.Style
	focused  lipgloss.Style
	selector lipgloss.Style
	cursor   lipgloss.Style
}

func newStyles(accent string) styles {
	c := lipgloss.Color(accent)
	return styles{
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(c).Padding(0, 1).Bold(true),
		focused:  lipgloss.NewStyle().Foreground(c).Bold(true).Width(11),
		selector: lipgloss.NewStyle().Foreground(c),
		cursor:   lipgloss.NewStyle().Foreground(c),
	}
}
