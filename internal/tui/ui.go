// Package tui is a terminal client for the point-cloud stream. It renders an
// XY projection of each frame.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

type quitMessage struct{}

type UIModel struct {
	viewer      tea.Model
	help        tea.Model
	overlay     tea.Model
	helpVisible bool
}

// NewUIModel returns a model that streams from the server at addr (host:port).
func NewUIModel(addr string) *UIModel {
	return &UIModel{viewer: newViewerModel(addr), help: &helpModel{}}
}

func (m *UIModel) Init() tea.Cmd {
	m.overlay = overlay.New(m.help, m.viewer, overlay.Center, overlay.Center, 0, 0)
	return tea.Batch(m.viewer.Init(), m.help.Init(), m.overlay.Init())
}

func (m *UIModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := message.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q":
			m.viewer.Update(quitMessage{})
			return m, tea.Quit
		case "esc":
			m.helpVisible = false
			return m, nil
		case "?":
			m.helpVisible = !m.helpVisible
			return m, nil
		}
		if m.helpVisible {
			return m, nil
		}
	}

	vm, cmd := m.viewer.Update(message)
	m.viewer = vm
	return m, cmd
}

func (m *UIModel) View() string {
	if m.helpVisible {
		return m.overlay.View()
	}
	return m.viewer.View()
}
