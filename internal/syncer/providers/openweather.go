package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/sunshine/internal/weather"
)

// OpenWeatherProvider reads the OpenWeatherMap daily forecast.
type OpenWeatherProvider struct {
	base
	apiKey string
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		base:   newBase("openweathermap", "https://api.openweathermap.org/data/2.5/forecast/daily", client, opts),
		apiKey: apiKey,
	}
}

type owmDaily struct {
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []struct {
		Dt       int64   `json:"dt"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
		Speed    float64 `json:"speed"`
		Deg      float64 `json:"deg"`
		Temp     struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Weather []struct {
			ID   int    `json:"id"`
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) (weather.ProviderForecast, error) {
	if p.apiKey == "" {
		return weather.ProviderForecast{}, fmt.Errorf("%s: %w", p.name, errNoAPIKey)
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("mode", "json")
	values.Set("cnt", strconv.Itoa(days))
	if loc.HasCoordinates() {
		values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
	} else {
		values.Set("q", loc.Setting)
	}

	var payload owmDaily
	if err := p.getJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderForecast{}, err
	}

	out := weather.ProviderForecast{
		City: payload.City.Name,
		Lat:  floatPtr(payload.City.Coord.Lat),
		Lon:  floatPtr(payload.City.Coord.Lon),
	}
	for _, d := range payload.List {
		r := weather.ProviderReading{
			ProviderName: p.name,
			Date:         weather.DayStart(time.Unix(d.Dt, 0).UTC()),
			MinTempC:     d.Temp.Min,
			MaxTempC:     d.Temp.Max,
			HumidityPct:  d.Humidity,
			PressureHpa:  d.Pressure,
			WindSpeedMS:  d.Speed,
			WindDegrees:  d.Deg,
			Condition:    weather.ConditionUnknown,
		}
		if len(d.Weather) > 0 {
			r.Condition = mapOpenWeatherCondition(d.Weather[0].Main)
			r.ConditionID = d.Weather[0].ID
			r.Description = d.Weather[0].Main
		}
		out.Readings = append(out.Readings, r)
	}
	return out, nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
