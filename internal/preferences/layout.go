package preferences

import (
	"context"
	"sync"
)

// DefaultBreakpoint is the widest terminal, in columns, still laid out as
// mobile. Anything wider is desktop.
const DefaultBreakpoint = 100

// LayoutState is a snapshot of the sidebar and theme as displayed.
type LayoutState struct {
	Width     int    `json:"width"`
	Desktop   bool   `json:"desktop"`
	Collapsed bool   `json:"collapsed"`
	Open      bool   `json:"open"`
	Theme     string `json:"theme"`
}

// Layout applies the responsive sidebar rules on top of the stored
// preferences. Collapsed applies only on desktop and Open only on mobile;
// crossing the breakpoint clears whichever no longer applies. Crossing does
// not change what is stored.
type Layout struct {
	mu         sync.Mutex
	store      Store
	prefs      Preferences
	width      int
	breakpoint int
	collapsed  bool
	open       bool
}

// NewLayout loads preferences from store and lays them out for width.
func NewLayout(ctx context.Context, store Store, width, breakpoint int) (*Layout, error) {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	prefs, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	l := &Layout{store: store, prefs: prefs, width: width, breakpoint: breakpoint}
	l.collapsed = prefs.SidebarCollapsed() && l.isDesktop()
	return l, nil
}

func (l *Layout) isDesktop() bool {
	return l.width > l.breakpoint
}

// IsDesktop reports whether the current width is above the breakpoint.
func (l *Layout) IsDesktop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isDesktop()
}

// State returns the current layout.
func (l *Layout) State() LayoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state()
}

func (l *Layout) state() LayoutState {
	return LayoutState{
		Width:     l.width,
		Desktop:   l.isDesktop(),
		Collapsed: l.collapsed,
		Open:      l.open,
		Theme:     l.prefs.Theme,
	}
}

// Preferences returns the stored preferences as last loaded or saved.
func (l *Layout) Preferences() Preferences {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prefs
}

// Resize applies the breakpoint rules for a new width.
func (l *Layout) Resize(width int) LayoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.width = width
	if l.isDesktop() {
		l.open = false
	} else {
		l.collapsed = false
	}
	return l.state()
}

// ToggleCollapse flips the sidebar on desktop and persists the choice.
// On mobile it does nothing.
func (l *Layout) ToggleCollapse(ctx context.Context) (LayoutState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isDesktop() {
		return l.state(), nil
	}
	next := l.prefs
	next.Sidebar = SidebarCollapsed
	if l.collapsed {
		next.Sidebar = SidebarExpanded
	}
	if err := l.store.Save(ctx, next); err != nil {
		return l.state(), err
	}
	l.prefs = next
	l.collapsed = !l.collapsed
	return l.state(), nil
}

// OpenMenu shows the mobile sidebar.
func (l *Layout) OpenMenu() LayoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = true
	return l.state()
}

// CloseMenu hides the mobile sidebar.
func (l *Layout) CloseMenu() LayoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = false
	return l.state()
}

// ToggleTheme switches between light and dark and persists the choice.
func (l *Layout) ToggleTheme(ctx context.Context) (LayoutState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.prefs
	next.Theme = ThemeLight
	if l.prefs.IsLight() {
		next.Theme = ThemeDark
	}
	if err := l.store.Save(ctx, next); err != nil {
		return l.state(), err
	}
	l.prefs = next
	return l.state(), nil
}

// Apply saves p and lays it out for the current width.
func (l *Layout) Apply(ctx context.Context, p Preferences) (LayoutState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Save(ctx, p); err != nil {
		return l.state(), err
	}
	l.prefs = p
	l.collapsed = p.SidebarCollapsed() && l.isDesktop()
	return l.state(), nil
}
