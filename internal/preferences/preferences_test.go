package preferences

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, SidebarExpanded, p.Sidebar)
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Preferences{Theme: "blue", Sidebar: SidebarExpanded}.Validate())
	assert.Error(t, Preferences{Theme: ThemeLight, Sidebar: "hidden"}.Validate())
	assert.NoError(t, Preferences{Theme: ThemeLight, Sidebar: SidebarCollapsed}.Validate())
}

func TestGetAndWith(t *testing.T) {
	p, err := Defaults().With(KeyTheme, ThemeLight)
	require.NoError(t, err)

	v, err := p.Get(KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, v)

	_, err = p.With(KeySidebar, "sideways")
	assert.Error(t, err)

	_, err = p.Get("font")
	assert.ErrorIs(t, err, ErrUnknownKey)
	_, err = p.With("font", "mono")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestFromMapIgnoresInvalidValues(t *testing.T) {
	p := fromMap(map[string]string{KeyTheme: "neon", KeySidebar: SidebarCollapsed, "legacy": "x"})
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, SidebarCollapsed, p.Sidebar)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", DBFileName)

	s, err := OpenSQLite(path)
	require.NoError(t, err)

	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p, "empty database yields defaults")

	want := Preferences{Theme: ThemeLight, Sidebar: SidebarCollapsed}
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStoreRejectsInvalid(t *testing.T) {
	s, err := OpenInStateDir(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Save(context.Background(), Preferences{Theme: "sepia", Sidebar: SidebarExpanded}))
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	require.NoError(t, s.Save(ctx, Preferences{Theme: ThemeLight, Sidebar: SidebarExpanded}))
	p, _ = s.Load(ctx)
	assert.Equal(t, ThemeLight, p.Theme)
	assert.NoError(t, s.Close())
}

type failingStore struct{ *MemoryStore }

func (failingStore) Save(context.Context, Preferences) error { return errors.New("disk full") }

func TestLayoutStartsFromStoredPreferences(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, Preferences{Theme: ThemeLight, Sidebar: SidebarCollapsed}))

	desktop, err := NewLayout(ctx, s, 140, 0)
	require.NoError(t, err)
	assert.Equal(t, LayoutState{Width: 140, Desktop: true, Collapsed: true, Theme: ThemeLight}, desktop.State())

	mobile, err := NewLayout(ctx, s, 80, 0)
	require.NoError(t, err)
	assert.False(t, mobile.State().Collapsed, "collapse never applies below the breakpoint")
}

func TestLayoutBreakpointIsExclusive(t *testing.T) {
	l, err := NewLayout(context.Background(), NewMemoryStore(), DefaultBreakpoint, DefaultBreakpoint)
	require.NoError(t, err)
	assert.False(t, l.IsDesktop())

	l.Resize(DefaultBreakpoint + 1)
	assert.True(t, l.IsDesktop())
}

func TestResizeToMobileClearsCollapsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l, err := NewLayout(ctx, s, 120, 100)
	require.NoError(t, err)

	st, err := l.ToggleCollapse(ctx)
	require.NoError(t, err)
	require.True(t, st.Collapsed)

	st = l.Resize(90)
	assert.False(t, st.Collapsed)
	assert.False(t, st.Desktop)

	stored, _ := s.Load(ctx)
	assert.Equal(t, SidebarCollapsed, stored.Sidebar, "resizing does not rewrite the stored preference")
}

func TestResizeToDesktopClearsOpen(t *testing.T) {
	l, err := NewLayout(context.Background(), NewMemoryStore(), 60, 100)
	require.NoError(t, err)

	require.True(t, l.OpenMenu().Open)
	st := l.Resize(160)
	assert.False(t, st.Open)
	assert.True(t, st.Desktop)
}

func TestResizeWithinModeKeepsState(t *testing.T) {
	l, err := NewLayout(context.Background(), NewMemoryStore(), 60, 100)
	require.NoError(t, err)

	l.OpenMenu()
	assert.True(t, l.Resize(70).Open)
	assert.False(t, l.CloseMenu().Open)
}

func TestToggleCollapseIgnoredOnMobile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l, err := NewLayout(ctx, s, 50, 100)
	require.NoError(t, err)

	st, err := l.ToggleCollapse(ctx)
	require.NoError(t, err)
	assert.False(t, st.Collapsed)

	stored, _ := s.Load(ctx)
	assert.Equal(t, SidebarExpanded, stored.Sidebar)
}

func TestToggleCollapsePersists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l, err := NewLayout(ctx, s, 150, 100)
	require.NoError(t, err)

	_, err = l.ToggleCollapse(ctx)
	require.NoError(t, err)
	stored, _ := s.Load(ctx)
	assert.Equal(t, SidebarCollapsed, stored.Sidebar)

	st, err := l.ToggleCollapse(ctx)
	require.NoError(t, err)
	assert.False(t, st.Collapsed)
	stored, _ = s.Load(ctx)
	assert.Equal(t, SidebarExpanded, stored.Sidebar)
}

func TestToggleTheme(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l, err := NewLayout(ctx, s, 150, 100)
	require.NoError(t, err)

	st, err := l.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, st.Theme)
	stored, _ := s.Load(ctx)
	assert.Equal(t, ThemeLight, stored.Theme)

	st, err = l.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, st.Theme)
}

func TestToggleFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	l, err := NewLayout(ctx, failingStore{NewMemoryStore()}, 150, 100)
	require.NoError(t, err)

	st, err := l.ToggleTheme(ctx)
	assert.Error(t, err)
	assert.Equal(t, ThemeDark, st.Theme)

	st, err = l.ToggleCollapse(ctx)
	assert.Error(t, err)
	assert.False(t, st.Collapsed)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	l, err := NewLayout(ctx, NewMemoryStore(), 150, 100)
	require.NoError(t, err)

	st, err := l.Apply(ctx, Preferences{Theme: ThemeLight, Sidebar: SidebarCollapsed})
	require.NoError(t, err)
	assert.True(t, st.Collapsed)
	assert.Equal(t, ThemeLight, l.Preferences().Theme)

	_, err = l.Apply(ctx, Preferences{Theme: "x", Sidebar: SidebarCollapsed})
	assert.Error(t, err)
	assert.Equal(t, ThemeLight, l.Preferences().Theme)
}
