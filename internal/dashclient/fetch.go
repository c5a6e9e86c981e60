package dashclient

import (
	"context"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"golang.org/x/sync/errgroup"
)

// EnvironmentResult is the settled outcome of the environment request.
// Exactly one of Snapshot or Err is meaningful; a nil Snapshot with a nil
// Err means the backend had no data.
type EnvironmentResult struct {
	Snapshot *domain.EnvironmentSnapshot
	Err      error
	Elapsed  time.Duration
}

// NotificationResult is the settled outcome of the notifications request.
type NotificationResult struct {
	Snapshot *domain.NotificationSnapshot
	Err      error
	Elapsed  time.Duration
}

// FetchEach issues both snapshot requests concurrently and hands each result
// to its handler as soon as that request settles. A failure of one request
// never cancels or delays the other. FetchEach returns once both handlers
// have returned. Nil handlers are allowed.
func (c *Client) FetchEach(ctx context.Context, onEnv func(EnvironmentResult), onNotif func(NotificationResult)) {
	// Errors live in the results; goroutines always return nil so the group
	// never short-circuits.
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		snap, err := c.FetchEnvironment(ctx)
		if onEnv != nil {
			onEnv(EnvironmentResult{Snapshot: snap, Err: err, Elapsed: time.Since(start)})
		}
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		snap, err := c.FetchNotifications(ctx)
		if onNotif != nil {
			onNotif(NotificationResult{Snapshot: snap, Err: err, Elapsed: time.Since(start)})
		}
		return nil
	})

	_ = g.Wait()
}

// FetchSnapshots issues both snapshot requests concurrently and waits for
// both to settle.
func (c *Client) FetchSnapshots(ctx context.Context) (EnvironmentResult, NotificationResult) {
	var (
		env   EnvironmentResult
		notif NotificationResult
	)
	c.FetchEach(ctx,
		func(r EnvironmentResult) { env = r },
		func(r NotificationResult) { notif = r },
	)
	return env, notif
}
