// Package state provides the bubbletea model of the dashboard.
package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

// UpdateMsg carries one dashboard update from the events bus.
type UpdateMsg struct {
	Update events.Update
}

// UpdatesClosedMsg is sent when the update subscription ends.
type UpdatesClosedMsg struct{}

// FaceLoadedMsg is sent when the face image for an overlay has been fetched.
type FaceLoadedMsg struct {
	URL  string
	Path string
	Size int
	Err  error
}

// ResolvedMsg is sent when an operator decision has been applied.
type ResolvedMsg struct {
	Action  domain.DecisionAction
	Message string
	Err     error
}

// LayoutChangedMsg is sent after a persisted layout change.
type LayoutChangedMsg struct {
	State preferences.LayoutState
	Err   error
}

// waitForUpdate blocks on the subscription and turns the next update into a
// message.
func waitForUpdate(ch <-chan events.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return UpdatesClosedMsg{}
		}
		return UpdateMsg{Update: u}
	}
}
