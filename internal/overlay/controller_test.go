package overlay

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(encoding string, unread int) *domain.NotificationSnapshot {
	return &domain.NotificationSnapshot{
		UnreadCount:       unread,
		PermissionRequest: &domain.PermissionRequest{Encoding: json.RawMessage(encoding), Active: true},
	}
}

func fixedClock(c *Controller, ts time.Time) {
	c.now = func() time.Time { return ts }
}

func TestBadgeFollowsUnreadCount(t *testing.T) {
	c := NewController()

	for _, n := range []int{0, 1, 7, 0, 250} {
		res := c.Reconcile(&domain.NotificationSnapshot{UnreadCount: n})
		assert.Equal(t, n, res.Badge.Count)
		assert.Equal(t, n > 0, res.Badge.Visible)
		assert.False(t, res.Action.IsShow())
	}
}

func TestNilSnapshotIsNoOp(t *testing.T) {
	c := NewController()
	res := c.Reconcile(nil)
	assert.Equal(t, domain.Badge{}, res.Badge)
	assert.Equal(t, domain.NoOp(), res.Action)
}

func TestRisingEdgeEmitsShowOnce(t *testing.T) {
	c := NewController()
	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	fixedClock(c, ts)

	first := c.Reconcile(pending(`[0.1,0.2]`, 1))
	second := c.Reconcile(pending(`[0.1,0.2]`, 1))

	require.True(t, first.Action.IsShow())
	assert.JSONEq(t, `[0.1,0.2]`, string(first.Action.Encoding))
	assert.Equal(t, ts, first.Action.RequestedAt)
	assert.Equal(t, domain.NoOp(), second.Action)

	state := c.State()
	assert.True(t, state.Visible)
	assert.JSONEq(t, `[0.1,0.2]`, string(state.Encoding))
	assert.Equal(t, ts, state.ShownAt)
}

func TestDifferentEncodingWhileVisibleIsIgnored(t *testing.T) {
	c := NewController()

	require.True(t, c.Reconcile(pending(`[1]`, 0)).Action.IsShow())
	res := c.Reconcile(pending(`[2]`, 0))

	assert.False(t, res.Action.IsShow())
	assert.JSONEq(t, `[1]`, string(c.State().Encoding))
}

func TestResolveRearmsOverlay(t *testing.T) {
	c := NewController()

	require.True(t, c.Reconcile(pending(`[0.5]`, 2)).Action.IsShow())
	require.True(t, c.Resolve())
	assert.Equal(t, domain.OverlayState{}, c.State())

	again := c.Reconcile(pending(`[0.5]`, 2))
	assert.True(t, again.Action.IsShow(), "identical encoding re-triggers after resolution")
	assert.False(t, c.Reconcile(pending(`[0.5]`, 2)).Action.IsShow())
}

func TestResolveWhenHiddenReportsFalse(t *testing.T) {
	c := NewController()
	assert.False(t, c.Resolve())
}

func TestAbsentRequestKeepsOverlayState(t *testing.T) {
	c := NewController()
	require.True(t, c.Reconcile(pending(`[9]`, 1)).Action.IsShow())

	res := c.Reconcile(&domain.NotificationSnapshot{UnreadCount: 1, PermissionRequest: &domain.PermissionRequest{}})
	assert.False(t, res.Action.IsShow())
	assert.True(t, c.State().Visible, "backend clearing the request does not hide the overlay")
}

func TestStateReturnsCopy(t *testing.T) {
	c := NewController()
	c.Reconcile(pending(`[3]`, 0))

	s := c.State()
	s.Encoding[1] = '4'

	assert.JSONEq(t, `[3]`, string(c.State().Encoding))
}

func TestConcurrentCyclesEmitSingleShow(t *testing.T) {
	c := NewController()
	var shows atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Reconcile(pending(`[0.7]`, 1)).Action.IsShow() {
				shows.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), shows.Load())
}
