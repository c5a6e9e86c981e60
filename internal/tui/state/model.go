package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
	"github.com/cristianoliveira/smarthome-dash/internal/tui/render"
)

const (
	defaultViewportWidth = 80
	faceFileMode         = 0o600
)

// Dashboard is the engine surface the model reads and acts on.
type Dashboard interface {
	View() domain.View
	Resolve(ctx context.Context, d domain.Decision) (*dashclient.ActionResponse, error)
}

// FaceFetcher downloads face snapshots.
type FaceFetcher interface {
	FaceImageURL(t time.Time) string
	FetchFaceImage(ctx context.Context, t time.Time) (*dashclient.FaceImage, error)
}

// Options configures a Model.
type Options struct {
	Context   context.Context
	Dashboard Dashboard
	Updates   <-chan events.Update
	Layout    *preferences.Layout
	Faces     FaceFetcher
	FaceDir   string // where fetched face images are written; empty keeps them in memory
	Logger    logging.Logger
}

// Model represents the TUI model for bubbletea.
type Model struct {
	ctx       context.Context
	dashboard Dashboard
	updates   <-chan events.Update
	layout    *preferences.Layout
	faces     FaceFetcher
	faceDir   string
	log       logging.Logger

	view   domain.View
	ui     preferences.LayoutState
	width  int
	height int

	face      render.OverlayState
	naming    bool
	nameInput textinput.Model

	status    string
	statusErr bool
}

// NewModel creates a model showing the dashboard's current view.
func NewModel(opts Options) (*Model, error) {
	if opts.Dashboard == nil {
		return nil, fmt.Errorf("tui: dashboard is required")
	}
	if opts.Layout == nil {
		return nil, fmt.Errorf("tui: layout is required")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	input := textinput.New()
	input.Placeholder = "visitor name"
	input.CharLimit = 64
	input.Prompt = "> "

	m := &Model{
		ctx:       opts.Context,
		dashboard: opts.Dashboard,
		updates:   opts.Updates,
		layout:    opts.Layout,
		faces:     opts.Faces,
		faceDir:   opts.FaceDir,
		log:       opts.Logger,
		view:      opts.Dashboard.View(),
		ui:        opts.Layout.State(),
		width:     opts.Layout.State().Width,
		nameInput: input,
	}
	if m.width <= 0 {
		m.width = defaultViewportWidth
	}
	if m.view.Overlay.Visible {
		m.face.FaceURL = m.faceURL(m.view.Overlay.ShownAt)
	}
	return m, nil
}

// Init starts listening for dashboard updates.
func (m *Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ui = m.layout.Resize(msg.Width)
		return m, nil
	case UpdateMsg:
		return m, tea.Batch(m.applyUpdate(msg.Update), waitForUpdate(m.updates))
	case UpdatesClosedMsg:
		return m, nil
	case FaceLoadedMsg:
		m.handleFaceLoaded(msg)
		return m, nil
	case ResolvedMsg:
		m.handleResolved(msg)
		return m, nil
	case LayoutChangedMsg:
		m.ui = msg.State
		if msg.Err != nil {
			m.setStatus("could not save preferences: "+msg.Err.Error(), true)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) applyUpdate(u events.Update) tea.Cmd {
	m.view = u.View
	switch u.Kind {
	case events.KindFailure:
		m.setStatus(u.Error, true)
	case events.KindEnvironment, events.KindNotifications:
		if m.statusErr {
			m.clearStatus()
		}
	case events.KindOverlay:
		if u.Action.IsShow() {
			m.naming = false
			m.nameInput.Reset()
			m.face = render.OverlayState{FaceURL: m.faceURL(u.Action.RequestedAt)}
			m.setStatus("unknown face at the door", false)
			return m.loadFace(u.Action.RequestedAt)
		}
	case events.KindResolved:
		m.naming = false
		m.face = render.OverlayState{}
	}
	return nil
}

func (m *Model) faceURL(t time.Time) string {
	if m.faces == nil {
		return ""
	}
	return m.faces.FaceImageURL(t)
}

// loadFace fetches the face image and, if a directory is configured, writes
// it there.
func (m *Model) loadFace(t time.Time) tea.Cmd {
	if m.faces == nil {
		return nil
	}
	ctx, faces, dir, log := m.ctx, m.faces, m.faceDir, m.log
	return func() tea.Msg {
		img, err := faces.FetchFaceImage(ctx, t)
		if err != nil {
			log.Warn("face image fetch failed", "kind", dashclient.Kind(err), "error", err)
			return FaceLoadedMsg{URL: faces.FaceImageURL(t), Err: err}
		}
		msg := FaceLoadedMsg{URL: img.URL, Size: len(img.Data)}
		if dir == "" {
			return msg
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			msg.Err = fmt.Errorf("create face directory: %w", err)
			return msg
		}
		path := filepath.Join(dir, fmt.Sprintf("face_%d.jpg", t.UnixMilli()))
		if err := os.WriteFile(path, img.Data, faceFileMode); err != nil {
			msg.Err = fmt.Errorf("write face image: %w", err)
			return msg
		}
		msg.Path = path
		return msg
	}
}

func (m *Model) handleFaceLoaded(msg FaceLoadedMsg) {
	if !m.view.Overlay.Visible {
		return
	}
	m.face.FaceURL = msg.URL
	m.face.FacePath = msg.Path
	m.face.FaceSize = msg.Size
	m.face.FaceErr = msg.Err
}

func (m *Model) handleResolved(msg ResolvedMsg) {
	if msg.Err != nil {
		m.setStatus(fmt.Sprintf("%s failed: %v", msg.Action, msg.Err), true)
		return
	}
	m.naming = false
	m.nameInput.Reset()
	m.nameInput.Blur()
	m.view = m.dashboard.View()
	if !m.view.Overlay.Visible {
		m.face = render.OverlayState{}
	}
	text := string(msg.Action)
	if msg.Message != "" {
		text = msg.Message
	}
	m.setStatus(text, false)
}

func (m *Model) resolve(d domain.Decision) tea.Cmd {
	ctx, dash := m.ctx, m.dashboard
	return func() tea.Msg {
		resp, err := dash.Resolve(ctx, d)
		msg := ResolvedMsg{Action: d.Action, Err: err}
		if resp != nil {
			msg.Message = resp.Message
		}
		return msg
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}
