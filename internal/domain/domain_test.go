package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionRequestPresent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"empty object", `{}`, false},
		{"null encoding", `{"encoding": null}`, false},
		{"empty string", `{"encoding": ""}`, false},
		{"false", `{"encoding": false}`, false},
		{"zero", `{"encoding": 0}`, false},
		{"zero with fraction", `{"encoding": 0.0}`, false},
		{"negative zero", `{"encoding": -0}`, false},
		{"zero exponent", `{"encoding": 0e10}`, false},
		{"non-zero number", `{"encoding": 0.5}`, true},
		{"string", `{"encoding": "abc"}`, true},
		{"vector", `{"encoding": [0.12, -0.4], "active": true}`, true},
		{"empty array is still a payload", `{"encoding": []}`, true},
		{"string payload", `{"encoding": "abc"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req PermissionRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Present())
		})
	}

	var nilReq *PermissionRequest
	assert.False(t, nilReq.Present())
}

func TestNotificationSnapshotDecodesBackendPayload(t *testing.T) {
	body := `{
		"notifications": [{"icon": "fa-user-secret", "color": "warning", "text": "Unknown person detected at the door.", "time": "10:02", "link": "/security", "read": false, "timestamp": 1700000000.5}],
		"unread_count": 3,
		"permission_request": {"encoding": [0.1, 0.2], "timestamp": 1700000000.5, "active": true, "face_image_available": true}
	}`

	var snap NotificationSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))

	assert.Equal(t, 3, snap.UnreadCount)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "/security", snap.Notifications[0].Link)
	assert.True(t, snap.PermissionRequest.Present())
	assert.JSONEq(t, `[0.1, 0.2]`, string(snap.PermissionRequest.Encoding))
}

func TestNewBadge(t *testing.T) {
	assert.Equal(t, Badge{Count: 0, Visible: false}, NewBadge(0))
	assert.Equal(t, Badge{Count: 0, Visible: false}, NewBadge(-2))
	assert.Equal(t, Badge{Count: 1, Visible: true}, NewBadge(1))
	assert.Equal(t, Badge{Count: 42, Visible: true}, NewBadge(42))
}

func TestIconIsValid(t *testing.T) {
	for _, icon := range []Icon{IconHeavyRain, IconCloud, IconSun, IconBolt, IconMist} {
		assert.True(t, icon.IsValid(), icon.String())
	}
	assert.False(t, Icon("snow").IsValid())
}

func TestDecisionValidate(t *testing.T) {
	assert.NoError(t, Decision{Action: DecisionDeny}.Validate())
	assert.NoError(t, Decision{Action: DecisionDismiss}.Validate())
	assert.NoError(t, Decision{Action: DecisionAllow, Name: "Sam"}.Validate())
	assert.Error(t, Decision{Action: DecisionAllowOnce, Name: "  "}.Validate())
	assert.Error(t, Decision{Action: "open-sesame"}.Validate())

	assert.True(t, Decision{Action: DecisionDeny}.Remote())
	assert.False(t, Decision{Action: DecisionDismiss}.Remote())
}

func TestOverlayActionIsShow(t *testing.T) {
	assert.False(t, NoOp().IsShow())
	assert.True(t, OverlayAction{Kind: ActionShow}.IsShow())
}
