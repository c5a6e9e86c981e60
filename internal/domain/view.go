package domain

import (
	"bytes"
	"time"
)

// CycleInfo describes the most recent poll cycle that touched the view.
type CycleInfo struct {
	ID            string    `json:"id,omitempty"`
	At            time.Time `json:"at,omitempty"`
	Environment   string    `json:"environment,omitempty"`   // "ok", "empty" or the error kind
	Notifications string    `json:"notifications,omitempty"` // "ok" or the error kind
}

// View is everything the presentation layer renders.
type View struct {
	Environment   EnvironmentView `json:"environment"`
	Badge         Badge           `json:"badge"`
	Overlay       OverlayState    `json:"overlay"`
	Notifications []Notification  `json:"notifications"`
	LastCycle     CycleInfo       `json:"last_cycle"`
}

// Clone returns a deep copy of the view.
func (v View) Clone() View {
	out := v
	out.Overlay.Encoding = bytes.Clone(v.Overlay.Encoding)
	if v.Notifications != nil {
		out.Notifications = append([]Notification(nil), v.Notifications...)
	}
	return out
}
