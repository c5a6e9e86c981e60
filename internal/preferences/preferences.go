// Package preferences persists the operator's UI preferences and applies
// the responsive sidebar rules.
package preferences

import (
	"errors"
	"fmt"
	"sort"
)

// Theme values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Sidebar values.
const (
	SidebarExpanded  = "expanded"
	SidebarCollapsed = "collapsed"
)

// Preference keys as stored and as accepted by Get/Set.
const (
	KeyTheme   = "theme"
	KeySidebar = "sidebar"
)

// ErrUnknownKey indicates a preference key that does not exist.
var ErrUnknownKey = errors.New("unknown preference key")

// Preferences are the persisted UI choices.
type Preferences struct {
	Theme   string `json:"theme"`
	Sidebar string `json:"sidebar"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{Theme: ThemeDark, Sidebar: SidebarExpanded}
}

// Validate checks that every field holds a known value.
func (p Preferences) Validate() error {
	if p.Theme != ThemeDark && p.Theme != ThemeLight {
		return fmt.Errorf("invalid theme: %q (allowed: %s, %s)", p.Theme, ThemeDark, ThemeLight)
	}
	if p.Sidebar != SidebarExpanded && p.Sidebar != SidebarCollapsed {
		return fmt.Errorf("invalid sidebar: %q (allowed: %s, %s)", p.Sidebar, SidebarCollapsed, SidebarExpanded)
	}
	return nil
}

// IsLight reports whether the light theme is selected.
func (p Preferences) IsLight() bool {
	return p.Theme == ThemeLight
}

// SidebarCollapsed reports whether the sidebar is stored as collapsed.
func (p Preferences) SidebarCollapsed() bool {
	return p.Sidebar == SidebarCollapsed
}

// Get returns the value stored under key.
func (p Preferences) Get(key string) (string, error) {
	switch key {
	case KeyTheme:
		return p.Theme, nil
	case KeySidebar:
		return p.Sidebar, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// With returns a copy of p with key set to value. The result is validated.
func (p Preferences) With(key, value string) (Preferences, error) {
	switch key {
	case KeyTheme:
		p.Theme = value
	case KeySidebar:
		p.Sidebar = value
	default:
		return p, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Keys lists the known preference keys in sorted order.
func Keys() []string {
	keys := []string{KeyTheme, KeySidebar}
	sort.Strings(keys)
	return keys
}

// fromMap builds preferences from stored key/value pairs. Unknown keys are
// ignored and invalid values fall back to the defaults.
func fromMap(values map[string]string) Preferences {
	p := Defaults()
	for _, key := range Keys() {
		v, ok := values[key]
		if !ok {
			continue
		}
		if next, err := p.With(key, v); err == nil {
			p = next
		}
	}
	return p
}

func (p Preferences) toMap() map[string]string {
	return map[string]string{
		KeyTheme:   p.Theme,
		KeySidebar: p.Sidebar,
	}
}
