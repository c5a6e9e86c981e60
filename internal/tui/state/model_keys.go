package state

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.naming {
		return m.handleNamingKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t":
		return m, m.toggleTheme()
	case "b":
		return m, m.toggleSidebar()
	case "m":
		if !m.ui.Desktop {
			m.ui = m.layout.OpenMenu()
		}
		return m, nil
	case "esc":
		m.ui = m.layout.CloseMenu()
		return m, nil
	}

	if !m.view.Overlay.Visible {
		return m, nil
	}
	switch msg.String() {
	case "a":
		return m, m.startNaming(domain.DecisionAllow)
	case "o":
		return m, m.startNaming(domain.DecisionAllowOnce)
	case "d":
		return m, m.resolve(domain.Decision{Action: domain.DecisionDeny})
	case "x":
		return m, m.resolve(domain.Decision{Action: domain.DecisionDismiss})
	}
	return m, nil
}

func (m *Model) handleNamingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.naming = false
		m.nameInput.Blur()
		m.nameInput.Reset()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.setStatus("a name is required", true)
			return m, nil
		}
		return m, m.resolve(domain.Decision{Action: m.face.Action, Name: name})
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) startNaming(action domain.DecisionAction) tea.Cmd {
	m.naming = true
	m.face.Action = action
	m.nameInput.Reset()
	return m.nameInput.Focus()
}

func (m *Model) toggleTheme() tea.Cmd {
	ctx, layout := m.ctx, m.layout
	return func() tea.Msg {
		st, err := layout.ToggleTheme(ctx)
		return LayoutChangedMsg{State: st, Err: err}
	}
}

func (m *Model) toggleSidebar() tea.Cmd {
	if !m.ui.Desktop {
		return nil
	}
	ctx, layout := m.ctx, m.layout
	return func() tea.Msg {
		st, err := layout.ToggleCollapse(ctx)
		return LayoutChangedMsg{State: st, Err: err}
	}
}
