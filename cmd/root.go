/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package cmd

import (
	"fmt"

	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/config"
	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/version"
	"github.com/spf13/cobra"
)

var (
	flagBaseURL string
	flagDebug   bool
	flagQuiet   bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "smarthome-dash",
	Short: "Terminal dashboard for the smart-home backend.",
	Long: `Terminal dashboard for the smart-home backend.

Polls the environment sensors and the notification feed, shows unknown-face
permission requests and lets the operator allow or deny them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		colors.Error(err.Error())
	}
	return err
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.SetVersionTemplate("smarthome-dash v{{.Version}}\n")
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend base URL (overrides base_url)")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")
	RootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print errors")
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	if cmd.Flags().Changed("base-url") {
		config.Set("base_url", flagBaseURL)
	}
	if flagDebug {
		config.Set("debug", "true")
	}
	if flagQuiet {
		config.Set("quiet", "true")
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	logging.GetGlobal().Info("command started", "command", cmd.Name(), "version", version.String())
	return nil
}

// GetVersion returns the current version.
func GetVersion() string {
	return version.String()
}
