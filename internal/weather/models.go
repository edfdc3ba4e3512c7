package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// ConditionID returns a representative OpenWeatherMap condition code for c.
// Providers that report their own code should store that instead.
func (c Condition) ConditionID() int {
	switch c {
	case ConditionClear:
		return 800
	case ConditionCloudy:
		return 803
	case ConditionRain:
		return 500
	case ConditionSnow:
		return 600
	case ConditionStorm:
		return 211
	case ConditionMist:
		return 741
	default:
		return -1
	}
}

// Description returns the short description stored alongside c.
func (c Condition) Description() string {
	switch c {
	case ConditionClear:
		return "Clear"
	case ConditionCloudy:
		return "Clouds"
	case ConditionRain:
		return "Rain"
	case ConditionSnow:
		return "Snow"
	case ConditionStorm:
		return "Storm"
	case ConditionMist:
		return "Fog"
	default:
		return "Unknown"
	}
}

// Location represents a place the user asked forecasts for.
// Setting is the raw preference value (postal code or "City,CC") and is the
// key every stored row is joined on.
type Location struct {
	Setting    string   `json:"setting"`
	City       string   `json:"city"`
	Country    string   `json:"country,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.Setting
}

// LocationFromSetting splits a location setting into its parts. "City,CC"
// yields a city and country; anything else is taken as a postal code.
func LocationFromSetting(setting string) Location {
	setting = strings.TrimSpace(setting)
	loc := Location{Setting: setting}
	if city, country, ok := strings.Cut(setting, ","); ok {
		loc.City = strings.TrimSpace(city)
		loc.Country = strings.TrimSpace(country)
		return loc
	}
	loc.PostalCode = setting
	return loc
}

// HasCoordinates reports whether both coordinates are known.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// DayForecast is one stored forecast row for a single day at a location.
type DayForecast struct {
	Date        int64   `json:"date"` // UTC midnight, epoch millis
	Description string  `json:"description"`
	ConditionID int     `json:"conditionId"`
	MinTempC    float64 `json:"minTempC"`
	MaxTempC    float64 `json:"maxTempC"`
	HumidityPct float64 `json:"humidityPercent"`
	PressureHpa float64 `json:"pressureHpa"`
	WindSpeedMS float64 `json:"windSpeed"`
	WindDegrees float64 `json:"windDegrees"`
}

// DayStart normalizes t to midnight UTC of its calendar day and returns it in
// epoch millis. All stored dates use this form.
func DayStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// DateOf converts a stored date back into a UTC time.
func DateOf(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}
