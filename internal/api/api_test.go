package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/api"
	"github.com/cristianoliveira/smarthome-dash/internal/dashboard"
	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboard struct {
	mu        sync.Mutex
	view      domain.View
	resolved  []domain.Decision
	resolveFn func(domain.Decision) (*dashclient.ActionResponse, error)
}

func (f *fakeDashboard) View() domain.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view.Clone()
}

func (f *fakeDashboard) Resolve(_ context.Context, d domain.Decision) (*dashclient.ActionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.view.Overlay.Visible {
		return nil, dashboard.ErrNoPendingRequest
	}
	if f.resolveFn != nil {
		resp, err := f.resolveFn(d)
		if err != nil {
			return nil, err
		}
		f.resolved = append(f.resolved, d)
		f.view.Overlay = domain.OverlayState{}
		return resp, nil
	}
	f.resolved = append(f.resolved, d)
	f.view.Overlay = domain.OverlayState{}
	return &dashclient.ActionResponse{Status: "ok", Message: "done"}, nil
}

func (f *fakeDashboard) showOverlay(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Overlay = domain.OverlayState{Visible: true, Encoding: json.RawMessage(`[0.1,0.2]`), ShownAt: at}
}

type fakeFaces struct {
	requested []time.Time
	err       error
}

func (f *fakeFaces) FetchFaceImage(_ context.Context, t time.Time) (*dashclient.FaceImage, error) {
	f.requested = append(f.requested, t)
	if f.err != nil {
		return nil, f.err
	}
	return &dashclient.FaceImage{URL: "http://backend/temp_face.jpg", ContentType: "image/jpeg", Data: []byte("JPEG")}, nil
}

type harness struct {
	srv    *httptest.Server
	dash   *fakeDashboard
	faces  *fakeFaces
	layout *preferences.Layout
	store  *preferences.MemoryStore
	bus    *events.Bus
}

func newHarness(t *testing.T, width int) *harness {
	t.Helper()
	store := preferences.NewMemoryStore()
	layout, err := preferences.NewLayout(context.Background(), store, width, preferences.DefaultBreakpoint)
	require.NoError(t, err)

	h := &harness{
		dash:   &fakeDashboard{view: domain.View{Badge: domain.NewBadge(2)}},
		faces:  &fakeFaces{},
		layout: layout,
		store:  store,
		bus:    events.NewBus(),
	}
	router := api.NewRouter(api.Options{
		Dashboard: h.dash,
		Faces:     h.faces,
		Layout:    layout,
		Events:    h.bus,
	})
	h.srv = httptest.NewServer(router)
	t.Cleanup(h.srv.Close)
	return h
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, 120)
	resp := do(t, h.srv, http.MethodGet, "/healthz", nil)
	requireStatus(t, resp, http.StatusOK)
	got := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", got["status"])
}

func TestGetView(t *testing.T) {
	h := newHarness(t, 120)
	resp := do(t, h.srv, http.MethodGet, "/view", nil)
	requireStatus(t, resp, http.StatusOK)
	got := decodeJSON[domain.View](t, resp)
	assert.Equal(t, domain.NewBadge(2), got.Badge)
	assert.False(t, got.Overlay.Visible)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, 120)
	resp := do(t, h.srv, http.MethodOptions, "/view", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestResolveWithoutPendingRequest(t *testing.T) {
	h := newHarness(t, 120)
	resp := do(t, h.srv, http.MethodPost, "/overlay/resolve", domain.Decision{Action: domain.DecisionDeny})
	requireStatus(t, resp, http.StatusConflict)
	got := decodeJSON[map[string]string](t, resp)
	assert.Contains(t, got["error"], "no pending")
}

func TestResolveValidation(t *testing.T) {
	h := newHarness(t, 120)
	h.dash.showOverlay(time.Now())

	resp := do(t, h.srv, http.MethodPost, "/overlay/resolve", domain.Decision{Action: domain.DecisionAllow})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = do(t, h.srv, http.MethodPost, "/overlay/resolve", map[string]string{"action": "maybe"})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = do(t, h.srv, http.MethodPost, "/overlay/resolve", map[string]string{"action": "deny", "extra": "x"})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	assert.Empty(t, h.dash.resolved)
	assert.True(t, h.dash.View().Overlay.Visible)
}

func TestResolveAllow(t *testing.T) {
	h := newHarness(t, 120)
	h.dash.showOverlay(time.Now())

	resp := do(t, h.srv, http.MethodPost, "/overlay/resolve", domain.Decision{Action: domain.DecisionAllow, Name: "Ana"})
	requireStatus(t, resp, http.StatusOK)
	got := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "allow", got["action"])
	assert.Equal(t, "done", got["message"])

	require.Len(t, h.dash.resolved, 1)
	assert.Equal(t, "Ana", h.dash.resolved[0].Name)
	assert.False(t, h.dash.View().Overlay.Visible)
}

func TestResolveBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", dashclient.ErrRejected, http.StatusUnprocessableEntity},
		{"status", &dashclient.StatusError{Endpoint: dashclient.SecurityActionPath, StatusCode: 500}, http.StatusBadGateway},
		{"transport", dashclient.ErrTransport, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 120)
			h.dash.showOverlay(time.Now())
			h.dash.resolveFn = func(domain.Decision) (*dashclient.ActionResponse, error) { return nil, tt.err }

			resp := do(t, h.srv, http.MethodPost, "/overlay/resolve", domain.Decision{Action: domain.DecisionDeny})
			requireStatus(t, resp, tt.want)
			resp.Body.Close()
			assert.True(t, h.dash.View().Overlay.Visible)
		})
	}
}

func TestFaceProxy(t *testing.T) {
	h := newHarness(t, 120)

	resp := do(t, h.srv, http.MethodGet, "/overlay/face", nil)
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	shown := time.UnixMilli(1_700_000_000_000)
	h.dash.showOverlay(shown)
	resp = do(t, h.srv, http.MethodGet, "/overlay/face", nil)
	requireStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "JPEG", string(body))
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	require.Len(t, h.faces.requested, 1)
	assert.True(t, shown.Equal(h.faces.requested[0]))
}

func TestFaceProxyBackendFailure(t *testing.T) {
	h := newHarness(t, 120)
	h.dash.showOverlay(time.Now())
	h.faces.err = errors.New("connection refused")

	resp := do(t, h.srv, http.MethodGet, "/overlay/face", nil)
	requireStatus(t, resp, http.StatusBadGateway)
	resp.Body.Close()
}

func TestPreferencesGetAndPut(t *testing.T) {
	h := newHarness(t, 120)

	resp := do(t, h.srv, http.MethodGet, "/preferences", nil)
	requireStatus(t, resp, http.StatusOK)
	type prefsBody struct {
		Preferences preferences.Preferences `json:"preferences"`
		Layout      preferences.LayoutState `json:"layout"`
	}
	got := decodeJSON[prefsBody](t, resp)
	assert.Equal(t, preferences.Defaults(), got.Preferences)

	resp = do(t, h.srv, http.MethodPut, "/preferences", map[string]string{"theme": "light"})
	requireStatus(t, resp, http.StatusOK)
	got = decodeJSON[prefsBody](t, resp)
	assert.Equal(t, preferences.ThemeLight, got.Preferences.Theme)
	assert.Equal(t, preferences.SidebarExpanded, got.Preferences.Sidebar)
	assert.Equal(t, preferences.ThemeLight, got.Layout.Theme)

	stored, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, preferences.ThemeLight, stored.Theme)

	resp = do(t, h.srv, http.MethodPut, "/preferences", map[string]string{"theme": "sepia"})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t, 120)
	resp := do(t, h.srv, http.MethodPost, "/preferences/theme/toggle", nil)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	assert.True(t, h.layout.Preferences().IsLight())
}

func TestLayoutResizeAndSidebar(t *testing.T) {
	h := newHarness(t, 120)

	resp := do(t, h.srv, http.MethodPost, "/layout/sidebar/toggle", nil)
	requireStatus(t, resp, http.StatusOK)
	st := decodeJSON[preferences.LayoutState](t, resp)
	assert.True(t, st.Collapsed)

	resp = do(t, h.srv, http.MethodPost, "/layout/resize", map[string]int{"width": 80})
	requireStatus(t, resp, http.StatusOK)
	st = decodeJSON[preferences.LayoutState](t, resp)
	assert.False(t, st.Desktop)
	assert.False(t, st.Collapsed)

	resp = do(t, h.srv, http.MethodPost, "/layout/menu", map[string]bool{"open": true})
	requireStatus(t, resp, http.StatusOK)
	st = decodeJSON[preferences.LayoutState](t, resp)
	assert.True(t, st.Open)

	resp = do(t, h.srv, http.MethodPost, "/layout/resize", map[string]int{"width": 0})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestSSEStream(t *testing.T) {
	h := newHarness(t, 120)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	next := func() (string, events.Update) {
		t.Helper()
		var event string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				var u events.Update
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &u))
				return event, u
			}
		}
		t.Fatalf("stream ended: %v", scanner.Err())
		return "", events.Update{}
	}

	event, u := next()
	assert.Equal(t, "snapshot", event)
	assert.Equal(t, 2, u.View.Badge.Count)

	// The snapshot is written after subscribing, so this publish is seen.
	require.Eventually(t, func() bool { return h.bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	h.bus.Publish(events.Update{Kind: events.KindOverlay, View: domain.View{Badge: domain.NewBadge(3)}, Action: domain.OverlayAction{Kind: domain.ActionShow}})

	event, u = next()
	assert.Equal(t, "overlay", event)
	assert.Equal(t, events.KindOverlay, u.Kind)
	assert.True(t, u.Action.IsShow())
	assert.Equal(t, 3, u.View.Badge.Count)

	cancel()
	require.Eventually(t, func() bool { return h.bus.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
