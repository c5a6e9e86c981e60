package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cristianoliveira/smarthome-dash/internal/config"
	"github.com/cristianoliveira/smarthome-dash/internal/dashboard"
	"github.com/cristianoliveira/smarthome-dash/internal/dashclient"
	"github.com/cristianoliveira/smarthome-dash/internal/hooks"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/poller"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

// defaultWidth lays out the sidebar before the first real size is known.
const defaultWidth = 120

const hooksSubscriber = "hooks"

// ephemeral keeps preferences in memory instead of the sqlite store.
var ephemeral bool

// runtimeOptions selects how a runtime is assembled.
type runtimeOptions struct {
	Ephemeral bool
	Width     int
	// HookOutput receives hook script output. Nil for the TUI, which owns
	// the terminal; the output then only reaches the debug log.
	HookOutput io.Writer
}

// runtime is the wired dashboard: backend client, engine, scheduler and
// preferences. Every long-running command builds one.
type runtime struct {
	client    *dashclient.Client
	dash      *dashboard.Dashboard
	store     preferences.Store
	layout    *preferences.Layout
	scheduler *poller.Scheduler
	hooks     *hooks.Runner // nil when hooks are disabled
	log       logging.Logger
}

type runtimeFactory func(ctx context.Context, opts runtimeOptions) (*runtime, error)

// newRuntime wires the components from the loaded configuration.
func newRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	log := logging.GetGlobal()

	client := dashclient.New(
		config.Get("base_url", "http://127.0.0.1:5000"),
		dashclient.WithTimeout(config.GetMillis("request_timeout_ms", dashclient.DefaultTimeout)),
	)

	store, err := openStore(opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	layout, err := preferences.NewLayout(ctx, store, width, config.GetInt("desktop_breakpoint", preferences.DefaultBreakpoint))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	dash := dashboard.New(client, dashboard.Options{
		TemperatureUnit:     config.Get("temperature_unit", "°C"),
		RecentNotifications: config.GetInt("recent_notifications", dashboard.DefaultRecentNotifications),
		Logger:              log.With("component", "dashboard"),
	})

	scheduler := &poller.Scheduler{
		Interval: config.GetMillis("poll_interval_ms", poller.DefaultInterval),
		Cycle:    dash.Cycle,
		Logger:   log.With("component", "poller"),
	}

	hookRunner := newHookRunner(log, opts.HookOutput)

	log.Info("runtime ready",
		"base_url", client.BaseURL(),
		"interval", scheduler.Interval.String(),
		"ephemeral", opts.Ephemeral,
		"hooks", hookRunner != nil,
	)
	return &runtime{
		client:    client,
		dash:      dash,
		store:     store,
		layout:    layout,
		scheduler: scheduler,
		hooks:     hookRunner,
		log:       log,
	}, nil
}

// newHookRunner returns nil when hooks are disabled or no directory is known.
func newHookRunner(log logging.Logger, out io.Writer) *hooks.Runner {
	if !config.GetBool("hooks_enabled", true) {
		return nil
	}
	dir := config.Get("hooks_dir", "")
	if dir == "" {
		configDir := config.Get("config_dir", "")
		if configDir == "" {
			return nil
		}
		dir = filepath.Join(configDir, "hooks")
	}
	return hooks.New(hooks.Options{
		Dir:           dir,
		Timeout:       config.GetMillis("hooks_timeout_ms", hooks.DefaultTimeout),
		MaxConcurrent: config.GetInt("hooks_max_concurrent", hooks.DefaultMaxConcurrent),
		Logger:        log.With("component", "hooks"),
		Output:        out,
	})
}

// openStore opens the sqlite preference store in state_dir, or an in-memory
// store when ephemeral is set.
func openStore(ephemeral bool) (preferences.Store, error) {
	if ephemeral {
		return preferences.NewMemoryStore(), nil
	}
	stateDir := config.Get("state_dir", "")
	if stateDir == "" {
		return nil, errors.New("state_dir is not configured")
	}
	store, err := preferences.OpenInStateDir(stateDir)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return store, nil
}

// start runs the scheduler and the hooks until ctx is cancelled. The
// returned channel yields Run's result once every in-flight cycle and hook
// script has returned.
func (r *runtime) start(ctx context.Context) <-chan error {
	var hooksDone chan struct{}
	if r.hooks != nil {
		updates := r.dash.Bus().Subscribe(hooksSubscriber)
		hooksDone = make(chan struct{})
		go func() {
			defer close(hooksDone)
			defer r.dash.Bus().Unsubscribe(hooksSubscriber)
			r.hooks.Watch(ctx, updates)
		}()
	}

	done := make(chan error, 1)
	go func() {
		err := r.scheduler.Run(ctx)
		if hooksDone != nil {
			<-hooksDone
		}
		done <- err
	}()
	return done
}

func (r *runtime) close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("close preference store", "error", err)
	}
	r.dash.Bus().Close()
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
