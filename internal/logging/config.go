package logging

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/smarthome-dash/internal/config"
)

const (
	logSubdir   = "logs"
	logDirPerms = 0o700
)

// Config holds logging configuration.
type Config struct {
	Enabled  bool
	Level    string // debug, info, warn or error
	MaxFiles int    // log files kept after rotation
	Command  string // subcommand name, part of the file name
	PID      int
	// StateDir is where the logs directory lives. Empty means the
	// configured state_dir.
	StateDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Level:    "info",
		MaxFiles: 10,
		Command:  filepath.Base(os.Args[0]),
		PID:      os.Getpid(),
	}
}

// FromGlobalConfig creates a logging Config from the global configuration.
// debug forces the debug level; quiet (without debug) raises it to error.
func FromGlobalConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = config.GetBool("logging_enabled", false)
	cfg.Level = config.Get("logging_level", "info")
	cfg.MaxFiles = config.GetInt("logging_max_files", 10)
	cfg.StateDir = config.Get("state_dir", "")
	switch {
	case config.GetBool("debug", false):
		cfg.Level = "debug"
	case config.GetBool("quiet", false):
		cfg.Level = "error"
	}
	return cfg
}

// LogDir returns the directory for log files under the configured state_dir,
// falling back to {os.TempDir()}/smarthome-dash/logs when state_dir is
// unset or not writable.
func LogDir() (string, error) {
	return logDirFor(config.Get("state_dir", ""))
}

func logDirFor(stateDir string) (string, error) {
	if stateDir != "" {
		dir := filepath.Join(stateDir, logSubdir)
		if err := ensureWritable(dir); err == nil {
			return dir, nil
		}
	}
	dir := filepath.Join(os.TempDir(), "smarthome-dash", logSubdir)
	if err := os.MkdirAll(dir, logDirPerms); err != nil {
		return "", err
	}
	return dir, nil
}

// ensureWritable creates dir and checks that a file can be created in it.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, logDirPerms); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return err
	}
	name := f.Name()
	return errors.Join(f.Close(), os.Remove(name))
}
