/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cristianoliveira/smarthome-dash/cmd"
	"github.com/cristianoliveira/smarthome-dash/internal/api"
	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/config"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

const serveCommandLong = `Run the dashboard headless and expose it over HTTP.

USAGE:
    smarthome-dash serve [OPTIONS]

OPTIONS:
    --listen <addr>   Address to listen on (default: listen_addr)
    --ephemeral       Keep preferences in memory only
    -h, --help        Show this help

ENDPOINTS:
    GET  /view                 Current dashboard view
    GET  /events               Server-sent event stream of updates
    POST /overlay/resolve      Answer the pending permission request
    GET  /overlay/face         Face image of the pending request
    GET  /preferences          Theme and sidebar preferences
    PUT  /preferences          Update preferences
    POST /layout/resize        Report the viewport width`

var serveListen string

// NewServeCmd creates the serve command with explicit dependencies.
func NewServeCmd(factory runtimeFactory) *cobra.Command {
	if factory == nil {
		panic("NewServeCmd: factory dependency cannot be nil")
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long:  serveCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			addr := serveListen
			if addr == "" {
				addr = config.Get("listen_addr", "127.0.0.1:8088")
			}
			// Without a log file the bridge reports on stderr.
			if logging.CurrentLogFile() == "" {
				logging.SetGlobal(logging.NewConsole(c.ErrOrStderr(), logging.FromGlobalConfig().Level))
			}
			ctx, stop := signalContext(c.Context())
			defer stop()

			rt, err := factory(ctx, runtimeOptions{Ephemeral: ephemeral, HookOutput: c.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer rt.close()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			colors.Info(fmt.Sprintf("Serving dashboard on http://%s (Ctrl+C to stop)", ln.Addr()))
			return Serve(ctx, ServeOptions{Runtime: rt, Listener: ln})
		},
	}

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default: listen_addr)")
	return serveCmd
}

// ServeOptions holds what Serve needs to run.
type ServeOptions struct {
	Runtime  *runtime
	Listener net.Listener
}

// Serve polls the backend and serves the HTTP bridge until ctx is
// cancelled, then shuts the server down and waits for in-flight cycles.
func Serve(ctx context.Context, opts ServeOptions) error {
	rt := opts.Runtime
	log := rt.log.With("component", "api")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler: api.NewRouter(api.Options{
			Dashboard: rt.dash,
			Faces:     rt.client,
			Layout:    rt.layout,
			Events:    rt.dash.Bus(),
			Logger:    log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := rt.start(ctx)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(opts.Listener)
	}()
	log.Info("http bridge listening", "addr", opts.Listener.Addr().String())

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	// Request contexts derive from ctx, so open event streams return here.
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("http shutdown", "error", shutdownErr)
	}
	<-done
	log.Info("http bridge stopped")
	return err
}

func init() {
	cmd.RootCmd.AddCommand(NewServeCmd(newRuntime))
}
