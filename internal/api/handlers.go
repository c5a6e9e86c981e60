package api

import (
	"errors"
	"net/http"

	"github.com/cristianoliveira/smarthome-dash/internal/dashboard"
	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.View())
}

func (h *Handlers) getOverlay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.View().Overlay)
}

// getFace proxies the backend face snapshot for the pending request.
func (h *Handlers) getFace(w http.ResponseWriter, r *http.Request) {
	overlay := h.dash.View().Overlay
	if !overlay.Visible {
		writeError(w, http.StatusNotFound, "no pending permission request")
		return
	}
	if h.faces == nil {
		writeError(w, http.StatusServiceUnavailable, "face images not available")
		return
	}
	img, err := h.faces.FetchFaceImage(r.Context(), overlay.ShownAt)
	if err != nil {
		h.log.Warn("face image proxy failed", "kind", dashclient.Kind(err), "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

type resolveResponse struct {
	Action  domain.DecisionAction `json:"action"`
	Message string                `json:"message,omitempty"`
	Overlay domain.OverlayState   `json:"overlay"`
}

func (h *Handlers) resolveOverlay(w http.ResponseWriter, r *http.Request) {
	var dec domain.Decision
	if err := decodeBody(w, r, &dec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := dec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.dash.Resolve(r.Context(), dec)
	switch {
	case errors.Is(err, dashboard.ErrNoPendingRequest):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, dashclient.ErrRejected):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	out := resolveResponse{Action: dec.Action, Overlay: h.dash.View().Overlay}
	if resp != nil {
		out.Message = resp.Message
	}
	writeJSON(w, http.StatusOK, out)
}

type preferencesResponse struct {
	Preferences preferences.Preferences `json:"preferences"`
	Layout      preferences.LayoutState `json:"layout"`
}

func (h *Handlers) preferencesBody() preferencesResponse {
	return preferencesResponse{Preferences: h.layout.Preferences(), Layout: h.layout.State()}
}

func (h *Handlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.preferencesBody())
}

// putPreferences accepts a partial update; missing fields keep their value.
func (h *Handlers) putPreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme   *string `json:"theme"`
		Sidebar *string `json:"sidebar"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	next := h.layout.Preferences()
	if req.Theme != nil {
		next.Theme = *req.Theme
	}
	if req.Sidebar != nil {
		next.Sidebar = *req.Sidebar
	}
	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.layout.Apply(r.Context(), next); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.preferencesBody())
}

func (h *Handlers) toggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.layout.ToggleTheme(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.preferencesBody())
}

func (h *Handlers) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.layout.State())
}

func (h *Handlers) resize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width int `json:"width"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Width <= 0 {
		writeError(w, http.StatusBadRequest, "width must be positive")
		return
	}
	writeJSON(w, http.StatusOK, h.layout.Resize(req.Width))
}

func (h *Handlers) toggleSidebar(w http.ResponseWriter, r *http.Request) {
	st, err := h.layout.ToggleCollapse(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) setMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Open bool `json:"open"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	st := h.layout.CloseMenu()
	if req.Open && !st.Desktop {
		st = h.layout.OpenMenu()
	}
	writeJSON(w, http.StatusOK, st)
}
