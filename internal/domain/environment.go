// Package domain holds the dashboard data model: the snapshots polled from
// the backend and the visual state derived from them.
package domain

// EnvironmentSnapshot is the payload of GET /api/environment.
type EnvironmentSnapshot struct {
	Temp        float64 `json:"temp"`
	Humidity    float64 `json:"humidity"`
	RainChance  float64 `json:"rain_chance"`
	Status      string  `json:"status"`
	IsRaining   bool    `json:"is_raining"`
	GasDetected bool    `json:"gas_detected,omitempty"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

// Icon is the weather icon category shown on the environment card.
type Icon string

const (
	IconHeavyRain Icon = "heavy-rain"
	IconCloud     Icon = "cloud"
	IconSun       Icon = "sun"
	IconBolt      Icon = "bolt"
	IconMist      Icon = "mist"
)

// IsValid checks if the icon is a known category.
func (i Icon) IsValid() bool {
	switch i {
	case IconHeavyRain, IconCloud, IconSun, IconBolt, IconMist:
		return true
	default:
		return false
	}
}

// String returns the string representation of the icon.
func (i Icon) String() string {
	return string(i)
}

// EnvironmentView is the rendered state of the environment card.
type EnvironmentView struct {
	TemperatureText string  `json:"temperature_text"`
	HumidityText    string  `json:"humidity_text"`
	RainProgress    float64 `json:"rain_progress"`
	RainChanceText  string  `json:"rain_chance_text"`
	Status          string  `json:"status"`
	Icon            Icon    `json:"icon"`
	GasDetected     bool    `json:"gas_detected"`
	LastUpdated     string  `json:"last_updated,omitempty"`
}

// IsZero reports whether nothing has been rendered yet.
func (v EnvironmentView) IsZero() bool {
	return v == EnvironmentView{}
}
