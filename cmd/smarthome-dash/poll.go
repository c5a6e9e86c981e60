/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cristianoliveira/smarthome-dash/cmd"
	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const pollCommandLong = `Poll the backend and print one line per dashboard update.

USAGE:
    smarthome-dash poll [OPTIONS]

OPTIONS:
    --no-color     Print without ANSI colors
    -h, --help     Show this help`

var pollNoColor bool

// NewPollCmd creates the poll command with explicit dependencies.
func NewPollCmd(factory runtimeFactory) *cobra.Command {
	if factory == nil {
		panic("NewPollCmd: factory dependency cannot be nil")
	}

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Print dashboard updates as they happen",
		Long:  pollCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signalContext(c.Context())
			defer stop()

			rt, err := factory(ctx, runtimeOptions{Ephemeral: true, HookOutput: c.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer rt.close()

			id := "poll-" + uuid.New().String()
			updates := rt.dash.Bus().Subscribe(id)
			defer rt.dash.Bus().Unsubscribe(id)

			colors.Info("Polling dashboard (Ctrl+C to stop)...")
			done := rt.start(ctx)
			err = Poll(ctx, PollOptions{Updates: updates, Output: c.OutOrStdout(), Color: !pollNoColor})
			stop()
			<-done
			return err
		},
	}

	pollCmd.Flags().BoolVar(&pollNoColor, "no-color", false, "Print without ANSI colors")
	return pollCmd
}

// PollOptions holds all parameters for printing updates.
type PollOptions struct {
	Updates <-chan events.Update
	Output  io.Writer // where to write updates (default os.Stdout)
	Color   bool
	Now     func() time.Time
}

// Poll prints each update until ctx is cancelled or the updates channel is
// closed.
func Poll(ctx context.Context, opts PollOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-opts.Updates:
			if !ok {
				return nil
			}
			printUpdate(opts.Output, u, opts.Now(), opts.Color)
		}
	}
}

// colorForKind returns the ANSI color for an update kind.
func colorForKind(k events.Kind) string {
	switch k {
	case events.KindFailure:
		return colors.Red
	case events.KindOverlay:
		return colors.Yellow
	case events.KindResolved:
		return colors.Green
	default:
		return ""
	}
}

func printUpdate(w io.Writer, u events.Update, at time.Time, color bool) {
	line := fmt.Sprintf("[%s] [%s] %s", at.Format("15:04:05"), u.Kind, describeUpdate(u))
	c := colorForKind(u.Kind)
	if color && c != "" {
		_, _ = fmt.Fprintf(w, "%s%s%s\n", c, line, colors.Reset)
		return
	}
	_, _ = fmt.Fprintln(w, line)
}

// describeUpdate summarizes the part of the view an update changed.
func describeUpdate(u events.Update) string {
	v := u.View
	switch u.Kind {
	case events.KindEnvironment:
		env := v.Environment
		parts := []string{env.TemperatureText, env.HumidityText, "rain " + env.RainChanceText, string(env.Icon)}
		if env.Status != "" {
			parts = append(parts, env.Status)
		}
		if env.GasDetected {
			parts = append(parts, "GAS DETECTED")
		}
		return strings.Join(parts, " ")
	case events.KindNotifications:
		if !v.Badge.Visible {
			return "no unread notifications"
		}
		return fmt.Sprintf("%d unread", v.Badge.Count)
	case events.KindOverlay:
		return "unknown face detected, permission requested"
	case events.KindResolved:
		return "permission request resolved"
	case events.KindFailure:
		return u.Error
	default:
		return ""
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewPollCmd(newRuntime))
}
