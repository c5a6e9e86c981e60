package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/google/uuid"
)

// snapshotKind names the first event of every stream: the full current view.
const snapshotKind = "snapshot"

// sseEvents streams dashboard updates. Clients receive the current view
// immediately, then every update as it is published.
func (h *Handlers) sseEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	if h.events == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream not available")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id := uuid.New().String()
	ch := h.events.Subscribe(id)
	defer h.events.Unsubscribe(id)
	h.log.Debug("sse client connected", "subscriber", id)

	sendSSE(w, flusher, snapshotKind, events.Update{
		Kind:   snapshotKind,
		View:   h.dash.View(),
		Action: domain.NoOp(),
	})

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			sendSSE(w, flusher, string(u.Kind), u)
		case <-r.Context().Done():
			h.log.Debug("sse client disconnected", "subscriber", id)
			return
		}
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
