package weather

import (
	"context"
)

// ProviderReading is one provider's normalized forecast for one day.
type ProviderReading struct {
	ProviderName string
	// Date is the UTC midnight of the forecast day, in epoch millis.
	Date int64

	MinTempC    float64
	MaxTempC    float64
	HumidityPct float64
	PressureHpa float64
	WindSpeedMS float64
	WindDegrees float64
	Condition   Condition
	// ConditionID is the provider's own OpenWeatherMap condition code, or 0.
	ConditionID int
	// Description is the provider's own short description, or "".
	Description string
}

// ProviderForecast is what a provider knows about a location plus its days.
type ProviderForecast struct {
	// City and the coordinates are filled in when the provider resolved them.
	City     string
	Lat      *float64
	Lon      *float64
	Readings []ProviderReading
}

// ForecastProvider abstracts a daily forecast source (e.g. OpenWeatherMap,
// WeatherAPI, Open-Meteo).
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location, days int) (ProviderForecast, error)
}
