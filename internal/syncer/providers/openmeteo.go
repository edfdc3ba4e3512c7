package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/sunshine/internal/weather"
)

// Geocoder resolves a location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves locations with the Google geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

// NewGoogleGeocoder configures the geocoding client. The key is process-wide.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if g.apiKey == "" {
		return 0, 0, fmt.Errorf("geocoder: %w", errNoAPIKey)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		l, err := geocoder.Geocoding(geocoder.Address{
			City:       loc.City,
			Country:    loc.Country,
			PostalCode: loc.PostalCode,
		})
		done <- result{loc: l, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, 0, fmt.Errorf("geocoder: %w", r.err)
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}

// OpenMeteoProvider reads the Open-Meteo daily forecast. It needs
// coordinates and resolves them through a Geocoder when the location has none.
type OpenMeteoProvider struct {
	base
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder, opts ...Option) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		base:     newBase("openmeteo", "https://api.open-meteo.com/v1/forecast", client, opts),
		geocoder: geo,
	}
}

type openMeteoDaily struct {
	Daily struct {
		Time          []string  `json:"time"`
		WeatherCode   []int     `json:"weather_code"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		WindSpeedMax  []float64 `json:"wind_speed_10m_max"`
		WindDirection []float64 `json:"wind_direction_10m_dominant"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) (weather.ProviderForecast, error) {
	var out weather.ProviderForecast
	lat, lon, err := p.coordinates(ctx, loc)
	if err != nil {
		return out, err
	}
	out.Lat, out.Lon = floatPtr(lat), floatPtr(lon)

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,wind_speed_10m_max,wind_direction_10m_dominant")
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "UTC")
	values.Set("forecast_days", strconv.Itoa(days))

	var payload openMeteoDaily
	if err := p.getJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return out, err
	}

	d := payload.Daily
	for i, day := range d.Time {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return out, fmt.Errorf("%s: bad date %q: %w", p.name, day, err)
		}
		r := weather.ProviderReading{
			ProviderName: p.name,
			Date:         weather.DayStart(date),
			MaxTempC:     at(d.TempMax, i),
			MinTempC:     at(d.TempMin, i),
			WindSpeedMS:  at(d.WindSpeedMax, i),
			WindDegrees:  at(d.WindDirection, i),
			Condition:    weather.ConditionUnknown,
		}
		if i < len(d.WeatherCode) {
			r.Condition = mapOpenMeteoCondition(d.WeatherCode[i])
		}
		out.Readings = append(out.Readings, r)
	}
	return out, nil
}

func (p *OpenMeteoProvider) coordinates(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if loc.HasCoordinates() {
		return *loc.Lat, *loc.Lon, nil
	}
	if p.geocoder == nil {
		return 0, 0, fmt.Errorf("%s: %w", p.name, errNoCoordinates)
	}
	return p.geocoder.Geocode(ctx, loc)
}

func at(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}
	return 0
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on the WMO weather codes Open-Meteo reports (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
