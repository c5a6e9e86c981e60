package state

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/smarthome-dash/internal/tui/render"
)

// View renders the TUI.
func (m *Model) View() string {
	th := render.ThemeFor(m.ui.Theme)

	header := render.Header(render.HeaderState{
		Badge:   m.view.Badge,
		Layout:  m.ui,
		Status:  m.status,
		IsError: m.statusErr,
	}, th)

	sidebar := render.Sidebar(m.ui, th)
	mainWidth := m.width
	if sidebar != "" {
		mainWidth -= lipgloss.Width(sidebar) + 1
	}

	var main string
	if m.view.Overlay.Visible {
		face := m.face
		face.Naming = m.naming
		if m.naming {
			face.Input = m.nameInput.View()
		}
		main = render.Overlay(face, th, mainWidth)
	} else {
		main = lipgloss.JoinVertical(lipgloss.Left,
			render.EnvironmentCard(m.view.Environment, th, mainWidth),
			render.NotificationList(m.view.Notifications, th, mainWidth),
		)
	}

	body := main
	if sidebar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	}

	footer := render.Footer(render.FooterState{
		Desktop:       m.ui.Desktop,
		OverlayActive: m.view.Overlay.Visible,
	})

	return strings.Join([]string{header, body, footer}, "\n")
}
