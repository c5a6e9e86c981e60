package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// NotificationSnapshot is the payload of GET /api/notifications.
type NotificationSnapshot struct {
	UnreadCount       int                `json:"unread_count"`
	PermissionRequest *PermissionRequest `json:"permission_request,omitempty"`
	Notifications     []Notification     `json:"notifications,omitempty"`
}

// PermissionRequest is a pending unknown-face event awaiting an operator
// decision. The backend sends an empty object when nothing is pending.
type PermissionRequest struct {
	Encoding           json.RawMessage `json:"encoding,omitempty"`
	Timestamp          float64         `json:"timestamp,omitempty"`
	Active             bool            `json:"active,omitempty"`
	FaceImageAvailable bool            `json:"face_image_available,omitempty"`
}

// Present reports whether the request carries a usable encoding. Null,
// false, the empty string and any number equal to zero count as absent.
func (r *PermissionRequest) Present() bool {
	if r == nil {
		return false
	}
	enc := bytes.TrimSpace(r.Encoding)
	switch string(enc) {
	case "", "null", "false", `""`:
		return false
	}
	var n float64
	if err := json.Unmarshal(enc, &n); err == nil {
		return n != 0
	}
	return true
}

// Notification is one entry of the backend's notification feed.
type Notification struct {
	Icon      string  `json:"icon"`
	Color     string  `json:"color"`
	Text      string  `json:"text"`
	Time      string  `json:"time"`
	Link      string  `json:"link,omitempty"`
	Read      bool    `json:"read"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Badge is the unread-count indicator in the top bar.
type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

// NewBadge derives the badge for an unread count. Zero hides the badge.
func NewBadge(unread int) Badge {
	if unread < 0 {
		unread = 0
	}
	return Badge{Count: unread, Visible: unread > 0}
}

// OverlayState is the client-held state of the permission overlay.
// Visible implies a non-empty Encoding.
type OverlayState struct {
	Visible  bool            `json:"visible"`
	Encoding json.RawMessage `json:"encoding,omitempty"`
	ShownAt  time.Time       `json:"shown_at,omitempty"`
}

// ActionKind discriminates overlay actions.
type ActionKind string

const (
	ActionNoOp ActionKind = "noop"
	ActionShow ActionKind = "show"
)

// OverlayAction is what the presentation layer must do with the overlay
// after a notification snapshot has been reconciled.
type OverlayAction struct {
	Kind        ActionKind      `json:"kind"`
	Encoding    json.RawMessage `json:"encoding,omitempty"`
	RequestedAt time.Time       `json:"requested_at,omitempty"`
}

// NoOp is the overlay action that changes nothing.
func NoOp() OverlayAction {
	return OverlayAction{Kind: ActionNoOp}
}

// IsShow reports whether the action asks for the overlay to be shown.
func (a OverlayAction) IsShow() bool {
	return a.Kind == ActionShow
}
