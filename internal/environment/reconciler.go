// Package environment maps environment snapshots onto the environment card.
package environment

import (
	"math"
	"strconv"
	"strings"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
)

// DefaultTemperatureUnit is appended to the temperature reading.
const DefaultTemperatureUnit = "°C"

// Reconciler keeps the currently rendered environment view and replaces it
// with each non-empty snapshot. It is not safe for concurrent use; the
// dashboard serializes calls.
type Reconciler struct {
	unit string
	view domain.EnvironmentView
}

// NewReconciler creates a reconciler rendering temperatures with unit.
// An empty unit falls back to DefaultTemperatureUnit.
func NewReconciler(unit string) *Reconciler {
	if unit == "" {
		unit = DefaultTemperatureUnit
	}
	return &Reconciler{unit: unit}
}

// Reconcile renders snapshot and returns the resulting view. A nil snapshot
// (the fetcher's form of a null or key-less body) leaves the previous view
// untouched and reports false. A reading of all zeros still renders.
func (r *Reconciler) Reconcile(snapshot *domain.EnvironmentSnapshot) (domain.EnvironmentView, bool) {
	if snapshot == nil {
		return r.view, false
	}
	r.view = Render(snapshot, r.unit)
	return r.view, true
}

// View returns the currently rendered view.
func (r *Reconciler) View() domain.EnvironmentView {
	return r.view
}

// Render is the pure mapping from a snapshot to a view.
func Render(s *domain.EnvironmentSnapshot, unit string) domain.EnvironmentView {
	return domain.EnvironmentView{
		TemperatureText: FormatNumber(s.Temp) + unit,
		HumidityText:    FormatNumber(s.Humidity) + "%",
		RainProgress:    clampPercent(s.RainChance),
		RainChanceText:  FormatNumber(s.RainChance) + "%",
		Status:          s.Status,
		Icon:            ClassifyIcon(s.IsRaining, s.Status),
		GasDetected:     s.GasDetected,
		LastUpdated:     s.LastUpdated,
	}
}

// ClassifyIcon picks the weather icon. Rain wins over any status text; after
// that the first matching keyword (case-insensitive) decides, in order:
// cloud, sun/clear, thunderstorm. Anything else is mist.
func ClassifyIcon(isRaining bool, status string) domain.Icon {
	if isRaining {
		return domain.IconHeavyRain
	}
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "cloud"):
		return domain.IconCloud
	case strings.Contains(s, "sun"), strings.Contains(s, "clear"):
		return domain.IconSun
	case strings.Contains(s, "thunderstorm"):
		return domain.IconBolt
	default:
		return domain.IconMist
	}
}

// FormatNumber prints v in its shortest decimal form: 25, 25.5, -3.25.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
