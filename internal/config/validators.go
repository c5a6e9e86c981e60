package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Validator checks a raw value and returns its normalized form. A value it
// rejects falls back to the key's default.
type Validator func(value string) (string, error)

// validators maps keys to their checks. Keys without an entry are free-form.
var validators map[string]Validator

func initValidators() {
	positive := PositiveIntValidator()
	flag := BoolValidator()
	validators = map[string]Validator{
		"base_url":             URLValidator(),
		"listen_addr":          ListenAddrValidator(),
		"poll_interval_ms":     positive,
		"request_timeout_ms":   positive,
		"desktop_breakpoint":   positive,
		"recent_notifications": positive,
		"temperature_unit":     NonEmptyValidator(),
		"logging_enabled":      flag,
		"logging_level":        EnumValidator("debug", "info", "warn", "warning", "error"),
		"logging_max_files":    positive,
		"hooks_enabled":        flag,
		"hooks_timeout_ms":     positive,
		"hooks_max_concurrent": positive,
		"debug":                flag,
		"quiet":                flag,
	}
}

// PositiveIntValidator accepts integers greater than zero.
func PositiveIntValidator() Validator {
	return func(value string) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return "", errors.New("must be a positive integer")
		}
		return strconv.Itoa(n), nil
	}
}

// EnumValidator accepts one of allowed, case-insensitively, and lowercases it.
func EnumValidator(allowed ...string) Validator {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	return func(value string) (string, error) {
		v := strings.ToLower(strings.TrimSpace(value))
		if !set[v] {
			return "", fmt.Errorf("must be one of: %s", strings.Join(sorted, ", "))
		}
		return v, nil
	}
}

// BoolValidator normalizes 1/yes/on and 0/no/off to "true" and "false".
func BoolValidator() Validator {
	return func(value string) (string, error) {
		v, ok := parseBool(value)
		if !ok {
			return "", errors.New("must be one of: 1, true, yes, on, 0, false, no, off")
		}
		return strconv.FormatBool(v), nil
	}
}

// URLValidator accepts absolute http(s) URLs. Trailing slashes are trimmed
// so endpoint paths can be appended directly.
func URLValidator() Validator {
	return func(value string) (string, error) {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", errors.New("must be an http(s) URL")
		}
		return strings.TrimRight(value, "/"), nil
	}
}

// ListenAddrValidator accepts host:port pairs such as "127.0.0.1:8088" or ":8088".
func ListenAddrValidator() Validator {
	return func(value string) (string, error) {
		_, port, err := net.SplitHostPort(value)
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			return "", fmt.Errorf("invalid port %q", port)
		}
		return value, nil
	}
}

// NonEmptyValidator rejects blank values.
func NonEmptyValidator() Validator {
	return func(value string) (string, error) {
		if strings.TrimSpace(value) == "" {
			return "", errors.New("must not be blank")
		}
		return value, nil
	}
}

// parseBool understands the boolean spellings accepted in config files and
// the environment.
func parseBool(val string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
