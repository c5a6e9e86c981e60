/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"fmt"

	"github.com/cristianoliveira/smarthome-dash/cmd"
	"github.com/spf13/cobra"
)

type versionClient interface {
	Version() string
}

type buildInfo struct{}

func (buildInfo) Version() string { return cmd.GetVersion() }

// NewVersionCmd creates the version command with explicit dependencies.
func NewVersionCmd(client versionClient) *cobra.Command {
	if client == nil {
		panic("NewVersionCmd: client dependency cannot be nil")
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of smarthome-dash.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "smarthome-dash version %s\n", client.Version())
			return nil
		},
	}

	return versionCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewVersionCmd(buildInfo{}))
}
