// Package overlay derives the notification badge and drives the unknown-face
// permission overlay.
//
// The overlay is shown on the rising edge of a pending permission request:
// the first snapshot that carries a request while the overlay is hidden
// yields a Show action, and every later snapshot is ignored until an
// operator resolves the request. The backend keeps reporting the same
// request on every poll, so visibility is tracked here rather than derived
// from the payload.
package overlay

import (
	"bytes"
	"sync"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
)

// Result is the outcome of reconciling one notification snapshot.
type Result struct {
	Badge  domain.Badge
	Action domain.OverlayAction
}

// Controller owns the OverlayState. All transitions happen under its mutex,
// so overlapping poll cycles emit at most one Show per pending request.
type Controller struct {
	mu    sync.Mutex
	state domain.OverlayState
	now   func() time.Time
}

// NewController returns a controller with the overlay hidden.
func NewController() *Controller {
	return &Controller{now: time.Now}
}

// Reconcile derives the badge from snapshot and decides the overlay action.
// A nil snapshot yields a hidden badge and no action.
func (c *Controller) Reconcile(snapshot *domain.NotificationSnapshot) Result {
	if snapshot == nil {
		return Result{Badge: domain.NewBadge(0), Action: domain.NoOp()}
	}
	return Result{
		Badge:  domain.NewBadge(snapshot.UnreadCount),
		Action: c.observe(snapshot.PermissionRequest),
	}
}

// observe applies the rising-edge rule. A request with a different encoding
// while the overlay is visible is dropped, not queued.
func (c *Controller) observe(req *domain.PermissionRequest) domain.OverlayAction {
	if !req.Present() {
		return domain.NoOp()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Visible {
		return domain.NoOp()
	}

	encoding := bytes.Clone(bytes.TrimSpace(req.Encoding))
	now := c.now()
	c.state = domain.OverlayState{Visible: true, Encoding: encoding, ShownAt: now}
	return domain.OverlayAction{
		Kind:        domain.ActionShow,
		Encoding:    bytes.Clone(encoding),
		RequestedAt: now,
	}
}

// Resolve hides the overlay after an operator decision. It reports false if
// the overlay was already hidden.
func (c *Controller) Resolve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Visible {
		return false
	}
	c.state = domain.OverlayState{}
	return true
}

// State returns a copy of the overlay state.
func (c *Controller) State() domain.OverlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Encoding = bytes.Clone(s.Encoding)
	return s
}
