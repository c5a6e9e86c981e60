package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

const (
	rainBarWidth    = 20
	sidebarWidth    = 18
	collapsedWidth  = 4
	minMessageWidth = 10
)

var navItems = []struct{ glyph, label string }{
	{"⌂", "Dashboard"},
	{"◉", "Security"},
	{"✉", "Notifications"},
	{"⚙", "Settings"},
}

// IconGlyph returns the terminal glyph for a weather icon.
func IconGlyph(icon domain.Icon) string {
	switch icon {
	case domain.IconHeavyRain:
		return "🌧"
	case domain.IconCloud:
		return "☁"
	case domain.IconSun:
		return "☀"
	case domain.IconBolt:
		return "⚡"
	default:
		return "🌫"
	}
}

// RainBar draws progress (0-100) as a fixed-width bar.
func RainBar(progress float64, width int) string {
	if width <= 0 {
		width = rainBarWidth
	}
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := int(math.Round(progress / 100 * float64(width)))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// EnvironmentCard renders the environment view. Before the first snapshot
// arrives it shows placeholders.
func EnvironmentCard(v domain.EnvironmentView, th Theme, width int) string {
	if v.IsZero() {
		body := th.Title.Render("Environment") + "\n" + th.Muted.Render("waiting for sensor data...")
		return th.Card.Width(cardWidth(width)).Render(body)
	}

	lines := []string{
		th.Title.Render("Environment") + "  " + IconGlyph(v.Icon) + " " + th.Text.Render(v.Status),
		fmt.Sprintf("%s %s    %s %s",
			th.Muted.Render("Temperature"), th.Text.Render(v.TemperatureText),
			th.Muted.Render("Humidity"), th.Text.Render(v.HumidityText)),
		fmt.Sprintf("%s %s %s",
			th.Muted.Render("Rain"), RainBar(v.RainProgress, rainBarWidth), th.Text.Render(v.RainChanceText)),
	}
	if v.GasDetected {
		lines = append(lines, th.Danger.Render("⚠ Gas detected"))
	}
	if v.LastUpdated != "" {
		lines = append(lines, th.Muted.Render("updated "+v.LastUpdated))
	}
	return th.Card.Width(cardWidth(width)).Render(strings.Join(lines, "\n"))
}

// Badge renders the unread badge, or nothing when it is hidden.
func Badge(b domain.Badge, th Theme) string {
	if !b.Visible {
		return ""
	}
	return th.Badge.Render(fmt.Sprintf("🔔 %d", b.Count))
}

// NotificationList renders the recent notification feed.
func NotificationList(ns []domain.Notification, th Theme, width int) string {
	var b strings.Builder
	b.WriteString(th.Title.Render("Recent notifications"))
	if len(ns) == 0 {
		b.WriteString("\n" + th.Muted.Render("no notifications"))
		return th.Card.Width(cardWidth(width)).Render(b.String())
	}
	msgWidth := cardWidth(width) - 14
	if msgWidth < minMessageWidth {
		msgWidth = minMessageWidth
	}
	for _, n := range ns {
		marker := th.Accent.Render("●")
		if n.Read {
			marker = th.Muted.Render("○")
		}
		fmt.Fprintf(&b, "\n%s %s %s", marker, th.Muted.Render(fmt.Sprintf("%-8s", truncate(n.Time, 8))), th.Text.Render(truncate(n.Text, msgWidth)))
	}
	return th.Card.Width(cardWidth(width)).Render(b.String())
}

// Sidebar renders the navigation column for the current layout. It returns
// an empty string when the sidebar is not shown.
func Sidebar(l preferences.LayoutState, th Theme) string {
	if !l.Desktop && !l.Open {
		return ""
	}
	var rows []string
	for i, item := range navItems {
		style := th.Text
		if i == 0 {
			style = th.Accent
		}
		if l.Desktop && l.Collapsed {
			rows = append(rows, style.Render(item.glyph))
			continue
		}
		rows = append(rows, style.Render(item.glyph+" "+item.label))
	}
	w := sidebarWidth
	if l.Desktop && l.Collapsed {
		w = collapsedWidth
	}
	return lipgloss.NewStyle().Width(w).Render(strings.Join(rows, "\n"))
}

// OverlayState carries what the permission overlay shows.
type OverlayState struct {
	FaceURL  string
	FacePath string
	FaceSize int
	FaceErr  error
	Naming   bool
	Action   domain.DecisionAction
	Input    string
}

// Overlay renders the unknown-face permission prompt.
func Overlay(s OverlayState, th Theme, width int) string {
	lines := []string{
		th.Danger.Render("⚠ Unknown face detected"),
		"",
	}
	switch {
	case s.FaceErr != nil:
		lines = append(lines, th.Muted.Render("face image unavailable: "+s.FaceErr.Error()))
	case s.FacePath != "":
		lines = append(lines, th.Text.Render("face image saved to "+s.FacePath))
	case s.FaceURL != "":
		lines = append(lines, th.Muted.Render("loading "+s.FaceURL))
	}
	lines = append(lines, "")
	if s.Naming {
		label := "Allow"
		if s.Action == domain.DecisionAllowOnce {
			label = "Allow once"
		}
		lines = append(lines, th.Accent.Render(label+" - visitor name:"), s.Input, th.Muted.Render("enter: confirm  esc: back"))
	} else {
		lines = append(lines, th.Text.Render("a: allow  o: allow once  d: deny  x: dismiss"))
	}
	w := cardWidth(width)
	if w > 60 {
		w = 60
	}
	return th.Modal.Width(w).Render(strings.Join(lines, "\n"))
}

// HeaderState defines the inputs needed to render the top bar.
type HeaderState struct {
	Badge   domain.Badge
	Layout  preferences.LayoutState
	Status  string
	IsError bool
}

// Header renders the top bar: menu hint, title, badge and status.
func Header(s HeaderState, th Theme) string {
	parts := []string{}
	if !s.Layout.Desktop {
		parts = append(parts, th.Muted.Render("☰"))
	}
	parts = append(parts, th.Title.Render("Smart Home"))
	if badge := Badge(s.Badge, th); badge != "" {
		parts = append(parts, badge)
	}
	if s.Status != "" {
		style := th.Muted
		if s.IsError {
			style = th.Danger
		}
		parts = append(parts, style.Render(s.Status))
	}
	return strings.Join(parts, "  ")
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	Desktop       bool
	OverlayActive bool
}

// Footer renders the footer with help text.
func Footer(state FooterState) string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var help []string
	if state.OverlayActive {
		help = append(help, "a/o/d/x: decide")
	}
	help = append(help, "t: theme")
	if state.Desktop {
		help = append(help, "b: sidebar")
	} else {
		help = append(help, "m: menu", "esc: close menu")
	}
	help = append(help, "q: quit")

	return helpStyle.Render(strings.Join(help, "  |  "))
}

func cardWidth(width int) int {
	if width <= 0 {
		return 60
	}
	if width < 24 {
		return 24
	}
	return width - 2
}

func truncate(value string, width int) string {
	if width <= 0 || utf8.RuneCountInString(value) <= width {
		return value
	}
	if width <= 3 {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-3]) + "..."
}
