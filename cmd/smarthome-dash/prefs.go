/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/smarthome-dash/cmd"
	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
	"github.com/spf13/cobra"
)

type storeOpener func() (preferences.Store, error)

const (
	prefsCommandLong = `Read and change the stored dashboard preferences.

USAGE:
    smarthome-dash prefs <subcommand>

SUBCOMMANDS:
    get [key]          Print one preference, or all of them
    set <key> <value>  Change a preference

KEYS:
    theme      dark | light
    sidebar    expanded | collapsed

EXAMPLES:
    # Show all preferences
    smarthome-dash prefs get

    # Switch to the light theme
    smarthome-dash prefs set theme light`
)

// NewPrefsCmd creates the prefs command with explicit dependencies.
func NewPrefsCmd(open storeOpener) *cobra.Command {
	if open == nil {
		panic("NewPrefsCmd: open dependency cannot be nil")
	}

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage dashboard preferences",
		Long:  prefsCommandLong,
	}

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Load(context.Background())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, err := p.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), v)
				return nil
			}
			for _, key := range preferences.Keys() {
				v, _ := p.Get(key)
				fmt.Fprintf(c.OutOrStdout(), "%s = %s\n", key, v)
			}
			return nil
		},
	})

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			p, err := store.Load(ctx)
			if err != nil {
				return err
			}
			next, err := p.With(args[0], args[1])
			if err != nil {
				return err
			}
			if err := store.Save(ctx, next); err != nil {
				return err
			}
			colors.Success(fmt.Sprintf("%s set to %s", args[0], args[1]))
			return nil
		},
	})

	return prefsCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewPrefsCmd(func() (preferences.Store, error) {
		return openStore(ephemeral)
	}))
}
