package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors
var (
	borderColor   = lipgloss.Color("240")
	titleFg       = lipgloss.Color("#ffffff")
	statusFg      = lipgloss.Color("#cccccc")
	axisFg        = lipgloss.Color("#444")
	hintFg        = lipgloss.Color("#666")
	errorFg       = lipgloss.Color("#ff6b6b")
	successFg     = lipgloss.Color("#51cf66")
	modalBorderFg = lipgloss.Color("62")
	modalBg       = lipgloss.Color("235")
	modalFg       = lipgloss.Color("252")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(titleFg).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(statusFg).
			AlignHorizontal(lipgloss.Right)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorFg).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(hintFg)

	axisStyle = lipgloss.NewStyle().
			Foreground(axisFg)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(modalBorderFg).
			Background(modalBg).
			Foreground(modalFg).
			Padding(1, 2)
)

// playingStatus returns a styled indicator for the playback state
func playingStatus(playing bool) string {
	if playing {
		return lipgloss.NewStyle().Foreground(successFg).Render("▶ Playing")
	}
	return lipgloss.NewStyle().Foreground(statusFg).Render("⏸ Paused")
}

// connectedStatus returns a styled indicator for the connection state
func connectedStatus(connected bool) string {
	if connected {
		return lipgloss.NewStyle().Foreground(successFg).Render("🔗 Connected")
	}
	return lipgloss.NewStyle().Foreground(errorFg).Render("🔗 Disconnected")
}
