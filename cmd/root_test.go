package cmd

import (
	"bytes"
	"testing"

	"github.com/cristianoliveira/smarthome-dash/internal/config"
	"github.com/cristianoliveira/smarthome-dash/internal/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	origVersion, origCommit := version.Version, version.Commit
	defer func() { version.Version, version.Commit = origVersion, origCommit }()

	version.Version, version.Commit = "0.1.0", "unknown"
	assert.Equal(t, "0.1.0", GetVersion())

	version.Version, version.Commit = "1.2.3", "abc1234"
	assert.Equal(t, "1.2.3+abc1234", GetVersion())
}

func TestVersionFlagTemplate(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{Use: "smarthome-dash", Version: "1.2.3", Run: func(*cobra.Command, []string) {}}
	c.SetVersionTemplate(RootCmd.VersionTemplate())
	c.SetOut(&buf)
	c.SetArgs([]string{"--version"})
	require.NoError(t, c.Execute())
	assert.Equal(t, "smarthome-dash v1.2.3\n", buf.String())
}

// probeCommand registers the root flags on a fresh command so that flag
// state does not leak between tests.
func probeCommand() *cobra.Command {
	flagBaseURL, flagDebug, flagQuiet = "", false, false
	c := &cobra.Command{Use: "probe"}
	c.Flags().StringVar(&flagBaseURL, "base-url", "", "")
	c.Flags().BoolVar(&flagDebug, "debug", false, "")
	c.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "")
	return c
}

func TestSetupAppliesFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SMARTHOME_DASH_CONFIG_DIR", dir)
	t.Setenv("SMARTHOME_DASH_STATE_DIR", dir)
	t.Setenv("SMARTHOME_DASH_BASE_URL", "http://from-env:5000")

	c := probeCommand()
	require.NoError(t, c.Flags().Set("base-url", "http://from-flag:5000"))

	require.NoError(t, setup(c, nil))
	assert.Equal(t, "http://from-flag:5000", config.Get("base_url", ""))
}

func TestSetupKeepsEnvWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SMARTHOME_DASH_CONFIG_DIR", dir)
	t.Setenv("SMARTHOME_DASH_STATE_DIR", dir)
	t.Setenv("SMARTHOME_DASH_BASE_URL", "http://from-env:5000")

	c := probeCommand()

	require.NoError(t, setup(c, nil))
	assert.Equal(t, "http://from-env:5000", config.Get("base_url", ""))
}
