/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/smarthome-dash/cmd"
	"github.com/cristianoliveira/smarthome-dash/internal/tui/app"
	"github.com/cristianoliveira/smarthome-dash/internal/tui/state"
	"github.com/spf13/cobra"
)

const watchCommandLong = `Open the interactive dashboard.

USAGE:
    smarthome-dash watch [OPTIONS]

OPTIONS:
    --ephemeral    Keep preferences in memory only
    -h, --help     Show this help

KEYS:
    t              Toggle light/dark theme
    b              Collapse/expand the sidebar (wide terminals)
    m / esc        Open/close the menu (narrow terminals)
    a / o / d / x  Allow, allow once, deny or dismiss a permission request
    q, ctrl+c      Quit`

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd(factory runtimeFactory) *cobra.Command {
	if factory == nil {
		panic("NewWatchCmd: factory dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive dashboard",
		Long:  watchCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runWatch(c.Context(), factory, nil)
		},
	}
}

// runWatch runs the TUI on top of a polling runtime. A nil runner uses the
// default bubbletea program.
func runWatch(parent context.Context, factory runtimeFactory, runner app.ProgramRunner) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signalContext(parent)
	defer stop()

	rt, err := factory(ctx, runtimeOptions{Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer rt.close()

	if runner == nil {
		runner = app.NewDefaultProgramRunner(tea.WithContext(ctx))
	}
	client := app.NewDefaultClient(state.Options{
		Dashboard: rt.dash,
		Layout:    rt.layout,
		Faces:     rt.client,
		FaceDir:   filepath.Join(os.TempDir(), "smarthome-dash"),
		Logger:    rt.log.With("component", "tui"),
	}, rt.dash.Bus(), runner)

	// Subscribe before the first cycle so its updates reach the model.
	model, release, err := client.CreateModel(ctx)
	if err != nil {
		return err
	}
	defer release()

	done := rt.start(ctx)
	err = client.RunProgram(model)
	stop()
	<-done

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func init() {
	watchCmd := NewWatchCmd(newRuntime)
	cmd.RootCmd.AddCommand(watchCmd)
	cmd.RootCmd.RunE = watchCmd.RunE
	cmd.RootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep preferences in memory only")
}
