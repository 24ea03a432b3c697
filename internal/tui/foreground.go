package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type helpModel struct{}

func (h *helpModel) Init() tea.Cmd {
	return nil
}

func (h *helpModel) Update(tea.Msg) (tea.Model, tea.Cmd) {
	return h, nil
}

func (h *helpModel) View() string {
	helpContent := `Point Cloud Viewer - Controls

Playback:
  [space]  Play/Pause
  [h/←]    Previous frame
  [l/→]    Next frame
  [0]      First frame
  [+/-]    Faster/slower playback

View:
  [a]      Toggle axes

General:
  [?]      Show this help
  [q]      Quit application

Press [Esc] to close this help`

	return modalStyle.
		Width(40).
		MaxWidth(46).
		Align(lipgloss.Left).
		Render(helpContent)
}
