// Package api exposes the dashboard over HTTP: the current view, a
// server-sent event stream of updates, overlay decisions and preferences.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Dashboard is the engine surface the handlers use.
type Dashboard interface {
	View() domain.View
	Resolve(ctx context.Context, d domain.Decision) (*dashclient.ActionResponse, error)
}

// FaceFetcher downloads the face snapshot for a pending request.
type FaceFetcher interface {
	FetchFaceImage(ctx context.Context, t time.Time) (*dashclient.FaceImage, error)
}

// EventBus is the interface for subscribing to dashboard updates.
type EventBus interface {
	Subscribe(id string) <-chan events.Update
	Unsubscribe(id string)
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	dash   Dashboard
	faces  FaceFetcher
	layout *preferences.Layout
	events EventBus
	log    logging.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg} with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeBody decodes a bounded JSON request body into v, rejecting unknown
// fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
