// Package dashboard runs poll cycles against the backend and keeps the
// rendered dashboard view.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/environment"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/overlay"
	"github.com/google/uuid"
)

// DefaultRecentNotifications is how many feed entries the view keeps.
const DefaultRecentNotifications = 5

// ErrNoPendingRequest is returned by Resolve when the overlay is hidden.
var ErrNoPendingRequest = errors.New("no pending permission request")

// Backend is the subset of dashclient.Client the dashboard needs.
type Backend interface {
	FetchEach(ctx context.Context, onEnv func(dashclient.EnvironmentResult), onNotif func(dashclient.NotificationResult))
	SecurityAction(ctx context.Context, d domain.Decision) (*dashclient.ActionResponse, error)
}

// Options configures a Dashboard.
type Options struct {
	TemperatureUnit     string
	RecentNotifications int
	Bus                 *events.Bus
	Logger              logging.Logger
}

// Dashboard owns the environment reconciler, the overlay controller and the
// rendered view. Results from overlapping cycles are applied as they arrive;
// the last write wins.
type Dashboard struct {
	backend Backend
	env     *environment.Reconciler
	overlay *overlay.Controller
	bus     *events.Bus
	log     logging.Logger
	recent  int
	now     func() time.Time

	mu   sync.Mutex
	view domain.View
}

// New creates a dashboard polling backend.
func New(backend Backend, opts Options) *Dashboard {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.RecentNotifications <= 0 {
		opts.RecentNotifications = DefaultRecentNotifications
	}
	return &Dashboard{
		backend: backend,
		env:     environment.NewReconciler(opts.TemperatureUnit),
		overlay: overlay.NewController(),
		bus:     opts.Bus,
		log:     opts.Logger,
		recent:  opts.RecentNotifications,
		now:     time.Now,
	}
}

// Bus returns the bus updates are published on.
func (d *Dashboard) Bus() *events.Bus {
	return d.bus
}

// View returns a copy of the current view.
func (d *Dashboard) View() domain.View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view.Clone()
}

// Cycle runs one poll cycle. Each endpoint's result is applied as soon as
// it arrives, independently of the other. The returned error joins the
// per-endpoint failures; previous state is kept for any failed endpoint.
func (d *Dashboard) Cycle(ctx context.Context) error {
	id := uuid.New().String()
	log := d.log.With("cycle", id)

	var envErr, notifErr error
	d.backend.FetchEach(ctx,
		func(r dashclient.EnvironmentResult) { envErr = d.applyEnvironment(id, log, r) },
		func(r dashclient.NotificationResult) { notifErr = d.applyNotifications(id, log, r) },
	)
	return errors.Join(envErr, notifErr)
}

func (d *Dashboard) applyEnvironment(id string, log logging.Logger, r dashclient.EnvironmentResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch(id)

	if r.Err != nil {
		kind := dashclient.Kind(r.Err)
		d.view.LastCycle.Environment = kind
		log.Warn("environment fetch failed", "endpoint", dashclient.EnvironmentPath, "kind", kind, "error", r.Err)
		d.publish(events.Update{Kind: events.KindFailure, Error: r.Err.Error()})
		return fmt.Errorf("environment: %w", r.Err)
	}

	view, changed := d.env.Reconcile(r.Snapshot)
	if !changed {
		d.view.LastCycle.Environment = "empty"
		log.Debug("environment snapshot empty", "elapsed", r.Elapsed.String())
		return nil
	}
	d.view.LastCycle.Environment = "ok"
	d.view.Environment = view
	log.Debug("environment updated", "status", view.Status, "icon", view.Icon.String(), "elapsed", r.Elapsed.String())
	d.publish(events.Update{Kind: events.KindEnvironment})
	return nil
}

func (d *Dashboard) applyNotifications(id string, log logging.Logger, r dashclient.NotificationResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch(id)

	if r.Err != nil {
		kind := dashclient.Kind(r.Err)
		d.view.LastCycle.Notifications = kind
		log.Warn("notifications fetch failed", "endpoint", dashclient.NotificationsPath, "kind", kind, "error", r.Err)
		d.publish(events.Update{Kind: events.KindFailure, Error: r.Err.Error()})
		return fmt.Errorf("notifications: %w", r.Err)
	}

	res := d.overlay.Reconcile(r.Snapshot)
	d.view.LastCycle.Notifications = "ok"
	d.view.Badge = res.Badge
	if r.Snapshot != nil {
		d.view.Notifications = firstN(r.Snapshot.Notifications, d.recent)
	}
	d.view.Overlay = d.overlay.State()
	d.publish(events.Update{Kind: events.KindNotifications})

	if res.Action.IsShow() {
		log.Info("permission request pending", "encoding_bytes", len(res.Action.Encoding))
		d.publish(events.Update{Kind: events.KindOverlay, Action: res.Action})
	}
	return nil
}

// Resolve applies an operator decision to the pending permission request.
// Remote decisions are posted to the backend first; the overlay stays
// visible if that fails so the operator can retry. The response is nil for
// a local dismiss.
func (d *Dashboard) Resolve(ctx context.Context, dec domain.Decision) (*dashclient.ActionResponse, error) {
	if err := dec.Validate(); err != nil {
		return nil, err
	}
	if !d.overlay.State().Visible {
		return nil, ErrNoPendingRequest
	}

	var resp *dashclient.ActionResponse
	if dec.Remote() {
		var err error
		resp, err = d.backend.SecurityAction(ctx, dec)
		if err != nil {
			d.log.Warn("security action failed", "action", dec.Action.String(), "kind", dashclient.Kind(err), "error", err)
			return resp, fmt.Errorf("security action %s: %w", dec.Action, err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.overlay.Resolve() {
		return resp, ErrNoPendingRequest
	}
	d.view.Overlay = d.overlay.State()
	d.log.Info("permission request resolved", "action", dec.Action.String())
	d.publish(events.Update{Kind: events.KindResolved})
	return resp, nil
}

// touch records the cycle that last wrote to the view. Caller holds mu.
func (d *Dashboard) touch(id string) {
	d.view.LastCycle.ID = id
	d.view.LastCycle.At = d.now()
}

// publish stamps u with the current view. Caller holds mu, which keeps
// updates in the order they were applied.
func (d *Dashboard) publish(u events.Update) {
	u.View = d.view.Clone()
	if u.Kind != events.KindOverlay {
		u.Action = domain.NoOp()
	}
	d.bus.Publish(u)
}

func firstN(in []domain.Notification, n int) []domain.Notification {
	if len(in) > n {
		in = in[:n]
	}
	return append([]domain.Notification{}, in...)
}
