// Package config provides configuration loading.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, SMARTHOME_DASH_* environment variables, the TOML config file,
// and the environment again so that env always beats the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644

	// FileExtTOML is the file extension for TOML configuration files.
	FileExtTOML = ".toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SMARTHOME_DASH_"
	appDir    = "smarthome-dash"
)

var (
	values   map[string]string
	defaults map[string]string
	mu       sync.RWMutex
)

func init() {
	initValidators()
}

// Load resolves the configuration from defaults, env and the config file.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	defaults = builtinDefaults()
	values = make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}

	applyEnv()
	applyFile()
	applyEnv()
	validate()
	writeSample()
}

func builtinDefaults() map[string]string {
	home, _ := os.UserHomeDir()
	configHome := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	stateHome := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	return map[string]string{
		"config_dir":           filepath.Join(configHome, appDir),
		"state_dir":            filepath.Join(stateHome, appDir),
		"base_url":             "http://127.0.0.1:5000",
		"poll_interval_ms":     "5000",
		"request_timeout_ms":   "30000",
		"temperature_unit":     "°C",
		"desktop_breakpoint":   "100",
		"listen_addr":          "127.0.0.1:8088",
		"recent_notifications": "5",
		"logging_enabled":      "false",
		"logging_level":        "info",
		"logging_max_files":    "10",
		"hooks_enabled":        "true",
		"hooks_dir":            "",
		"hooks_timeout_ms":     "30000",
		"hooks_max_concurrent": "10",
		"debug":                "false",
		"quiet":                "false",
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// ConfigPath returns the path of the TOML configuration file in use.
// SMARTHOME_DASH_CONFIG_PATH overrides the default location.
func ConfigPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return configPath()
}

func configPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG_PATH"); p != "" {
		return p
	}
	if values["config_dir"] == "" {
		return ""
	}
	return filepath.Join(values["config_dir"], "config"+FileExtTOML)
}

func applyFile() {
	path := configPath()
	if path == "" || !strings.EqualFold(filepath.Ext(path), FileExtTOML) {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			colors.Debug(fmt.Sprintf("unable to read config file %s: %v", path, err))
		}
		return
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", path, err))
		return
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		s, ok := stringify(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		values[key] = s
	}
}

// stringify turns a decoded TOML scalar into its string form.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func applyEnv() {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "config_path" {
			continue
		}
		values[key] = value
	}
}

// validate normalizes values and puts defaults back where a check fails.
func validate() {
	for key, check := range validators {
		raw, ok := values[key]
		if !ok || raw == "" {
			values[key] = defaults[key]
			continue
		}
		normalized, err := check(raw)
		if err != nil {
			colors.Warning(fmt.Sprintf("invalid %s value '%s': %v; using default: %s", key, raw, err, defaults[key]))
			values[key] = defaults[key]
			continue
		}
		values[key] = normalized
	}
}

// sampleFile is the commented config.toml written on first run.
type sampleFile struct {
	BaseURL             string `toml:"base_url" comment:"Backend serving /api/environment and /api/notifications"`
	PollIntervalMs      int    `toml:"poll_interval_ms" comment:"Milliseconds between poll cycles"`
	RequestTimeoutMs    int    `toml:"request_timeout_ms" comment:"Per-request HTTP timeout in milliseconds"`
	TemperatureUnit     string `toml:"temperature_unit" comment:"Suffix appended to the temperature reading"`
	DesktopBreakpoint   int    `toml:"desktop_breakpoint" comment:"Widths above this many columns use the desktop sidebar"`
	ListenAddr          string `toml:"listen_addr" comment:"Address of the HTTP bridge started by 'serve'"`
	RecentNotifications int    `toml:"recent_notifications" comment:"Notifications kept in the view"`
	LoggingEnabled      bool   `toml:"logging_enabled" comment:"Write JSON logs under state_dir/logs"`
	LoggingLevel        string `toml:"logging_level" comment:"debug, info, warn or error"`
	LoggingMaxFiles     int    `toml:"logging_max_files" comment:"Log files kept after rotation"`
	HooksEnabled        bool   `toml:"hooks_enabled" comment:"Run scripts from hooks_dir on dashboard events"`
	HooksDir            string `toml:"hooks_dir" comment:"Defaults to config_dir/hooks when empty"`
	HooksTimeoutMs      int    `toml:"hooks_timeout_ms" comment:"Hook scripts are killed after this many milliseconds"`
	HooksMaxConcurrent  int    `toml:"hooks_max_concurrent" comment:"Scripts over this limit are skipped"`
}

func sampleFromDefaults() sampleFile {
	num := func(k string) int {
		n, _ := strconv.Atoi(defaults[k])
		return n
	}
	flag := func(k string) bool {
		b, _ := parseBool(defaults[k])
		return b
	}
	return sampleFile{
		BaseURL:             defaults["base_url"],
		PollIntervalMs:      num("poll_interval_ms"),
		RequestTimeoutMs:    num("request_timeout_ms"),
		TemperatureUnit:     defaults["temperature_unit"],
		DesktopBreakpoint:   num("desktop_breakpoint"),
		ListenAddr:          defaults["listen_addr"],
		RecentNotifications: num("recent_notifications"),
		LoggingEnabled:      flag("logging_enabled"),
		LoggingLevel:        defaults["logging_level"],
		LoggingMaxFiles:     num("logging_max_files"),
		HooksEnabled:        flag("hooks_enabled"),
		HooksDir:            defaults["hooks_dir"],
		HooksTimeoutMs:      num("hooks_timeout_ms"),
		HooksMaxConcurrent:  num("hooks_max_concurrent"),
	}
}

// writeSample writes config.toml with the defaults if no file exists yet.
func writeSample() {
	dir := values["config_dir"]
	if dir == "" {
		return
	}
	path := filepath.Join(dir, "config"+FileExtTOML)
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		colors.Debug(fmt.Sprintf("unable to create config dir %s: %v", dir, err))
		return
	}

	data, err := toml.Marshal(sampleFromDefaults())
	if err != nil {
		colors.Warning(fmt.Sprintf("unable to marshal sample config: %v", err))
		return
	}
	header := "# smarthome-dash configuration\n# Environment variables (SMARTHOME_DASH_<KEY>) override these values.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), FileModeFile); err != nil {
		colors.Warning(fmt.Sprintf("unable to write sample config to %s: %v", path, err))
	}
}

// Set overrides a configuration value for the running process.
// Command-line flags use it so that they win over env and file.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value
}

func lookup(key string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := values[key]
	return v, ok
}

// Get returns a configuration value or default.
func Get(key, defaultValue string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return defaultValue
}

// GetInt returns a configuration value as integer, or default.
func GetInt(key string, defaultValue int) int {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a configuration value as boolean, or default.
func GetBool(key string, defaultValue bool) bool {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	if b, ok := parseBool(v); ok {
		return b
	}
	return defaultValue
}

// GetMillis reads an integer millisecond value as a time.Duration.
func GetMillis(key string, defaultValue time.Duration) time.Duration {
	n := GetInt(key, -1)
	if n <= 0 {
		return defaultValue
	}
	return time.Duration(n) * time.Millisecond
}
