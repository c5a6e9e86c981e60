// Package hooks runs user scripts when something happens on the dashboard.
//
// Scripts live in one directory per hook point under the hooks directory,
// for example hooks/permission-request/10-notify.sh. Every executable file is
// run in name order, asynchronously, with a timeout. Details are passed
// through SMARTHOME_DASH_* environment variables. Face encodings are never
// passed to scripts.
package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
)

// Hook points.
const (
	PointPermissionRequest  = "permission-request"
	PointPermissionResolved = "permission-resolved"
	PointGasDetected        = "gas-detected"
	PointPollFailure        = "poll-failure"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxConcurrent = 10

	envPrefix = "SMARTHOME_DASH_"
)

// Options configures a Runner.
type Options struct {
	Dir           string
	Timeout       time.Duration
	MaxConcurrent int
	Logger        logging.Logger

	// Output receives script stdout and stderr. When nil, output only goes
	// to the debug log, which keeps it off a terminal owned by the TUI.
	Output io.Writer
}

// Runner maps dashboard updates to hook points and runs their scripts.
type Runner struct {
	dir     string
	timeout time.Duration
	out     io.Writer
	log     logging.Logger
	sem     chan struct{}
	wg      sync.WaitGroup
	now     func() time.Time

	mu         sync.Mutex
	outMu      sync.Mutex
	gasPresent bool
}

// New creates a runner for the scripts under opts.Dir.
func New(opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Runner{
		dir:     opts.Dir,
		timeout: opts.Timeout,
		out:     opts.Output,
		log:     opts.Logger,
		sem:     make(chan struct{}, opts.MaxConcurrent),
		now:     time.Now,
	}
}

// Dir returns the hooks directory.
func (r *Runner) Dir() string {
	return r.dir
}

// Watch handles updates until ctx is cancelled or the channel is closed,
// then waits for running scripts.
func (r *Runner) Watch(ctx context.Context, updates <-chan events.Update) {
	defer r.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			r.Handle(ctx, u)
		}
	}
}

// Handle runs the hooks an update triggers and returns how many scripts
// were started.
func (r *Runner) Handle(ctx context.Context, u events.Update) int {
	point, ok := r.pointFor(u)
	if !ok {
		return 0
	}
	return r.Run(ctx, point, envFor(u))
}

// pointFor picks the hook point for u. Gas detection fires once per rising
// edge, not on every environment reading.
func (r *Runner) pointFor(u events.Update) (string, bool) {
	switch u.Kind {
	case events.KindOverlay:
		return PointPermissionRequest, u.Action.IsShow()
	case events.KindResolved:
		return PointPermissionResolved, true
	case events.KindFailure:
		return PointPollFailure, true
	case events.KindEnvironment:
		r.mu.Lock()
		defer r.mu.Unlock()
		rising := u.View.Environment.GasDetected && !r.gasPresent
		r.gasPresent = u.View.Environment.GasDetected
		return PointGasDetected, rising
	default:
		return "", false
	}
}

func envFor(u events.Update) map[string]string {
	v := u.View
	env := map[string]string{
		"EVENT":        string(u.Kind),
		"UNREAD_COUNT": strconv.Itoa(v.Badge.Count),
	}
	if !v.Environment.IsZero() {
		env["TEMPERATURE"] = v.Environment.TemperatureText
		env["HUMIDITY"] = v.Environment.HumidityText
		env["RAIN_CHANCE"] = v.Environment.RainChanceText
		env["STATUS"] = v.Environment.Status
		env["GAS_DETECTED"] = strconv.FormatBool(v.Environment.GasDetected)
	}
	if u.Action.IsShow() && !u.Action.RequestedAt.IsZero() {
		env["REQUESTED_AT"] = u.Action.RequestedAt.Format(time.RFC3339)
	}
	if u.Error != "" {
		env["ERROR"] = u.Error
	}
	return env
}

// Scripts lists the executable scripts for a hook point in name order.
func (r *Runner) Scripts(point string) []string {
	if r.dir == "" {
		return nil
	}
	dir := filepath.Join(r.dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)
	return scripts
}

// Run starts every script for point and returns how many were started.
// Scripts beyond the concurrency limit are skipped, not queued.
func (r *Runner) Run(ctx context.Context, point string, vars map[string]string) int {
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return 0
	}

	env := os.Environ()
	env = append(env,
		envPrefix+"HOOK_POINT="+point,
		envPrefix+"HOOK_TIMESTAMP="+r.now().Format(time.RFC3339),
	)
	if exe, err := os.Executable(); err == nil {
		env = append(env, envPrefix+"BINARY="+exe)
	}
	for k, v := range vars {
		env = append(env, envPrefix+k+"="+v)
	}

	started := 0
	for _, script := range scripts {
		select {
		case r.sem <- struct{}{}:
		default:
			r.log.Warn("too many hooks running, skipping", "point", point, "script", filepath.Base(script), "max", cap(r.sem))
			continue
		}
		started++
		r.wg.Add(1)
		go r.exec(ctx, point, script, env)
	}
	return started
}

func (r *Runner) exec(ctx context.Context, point, script string, env []string) {
	defer r.wg.Done()
	defer func() { <-r.sem }()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	name := filepath.Base(script)
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = env
	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if len(output) > 0 {
		r.log.Debug("hook output", "point", point, "script", name, "output", strings.TrimSpace(string(output)))
	}
	if len(output) > 0 && r.out != nil {
		r.outMu.Lock()
		_, _ = fmt.Fprintf(r.out, "[hook %s/%s] %s", point, name, output)
		r.outMu.Unlock()
	}
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.log.Warn("hook timed out", "point", point, "script", name, "timeout", r.timeout.String())
	case err != nil:
		r.log.Warn("hook failed", "point", point, "script", name, "error", err, "elapsed", elapsed.String())
	default:
		r.log.Debug("hook completed", "point", point, "script", name, "elapsed", elapsed.String())
	}
}

// Wait blocks until every started script has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
