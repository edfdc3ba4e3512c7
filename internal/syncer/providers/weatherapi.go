package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/sunshine/internal/common"
	"github.com/i474232898/sunshine/internal/weather"
)

// WeatherAPIProvider reads the WeatherAPI.com forecast.
type WeatherAPIProvider struct {
	base
	apiKey string
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		base:   newBase("weatherapi", "https://api.weatherapi.com/v1/forecast.json", client, opts),
		apiKey: apiKey,
	}
}

type weatherAPIForecast struct {
	Location struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			DateEpoch int64 `json:"date_epoch"`
			Day       struct {
				MaxTempC    float64 `json:"maxtemp_c"`
				MinTempC    float64 `json:"mintemp_c"`
				AvgHumidity float64 `json:"avghumidity"`
				MaxWindKph  float64 `json:"maxwind_kph"`
				Condition   struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) (weather.ProviderForecast, error) {
	if p.apiKey == "" {
		return weather.ProviderForecast{}, fmt.Errorf("%s: %w", p.name, errNoAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("days", strconv.Itoa(days))
	// WeatherAPI uses "q" for location; it accepts "city,country", a postal code or "lat,lon".
	if loc.HasCoordinates() {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		values.Set("q", loc.Setting)
	}

	var payload weatherAPIForecast
	if err := p.getJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderForecast{}, err
	}

	out := weather.ProviderForecast{
		City: payload.Location.Name,
		Lat:  floatPtr(payload.Location.Lat),
		Lon:  floatPtr(payload.Location.Lon),
	}
	for _, d := range payload.Forecast.ForecastDay {
		out.Readings = append(out.Readings, weather.ProviderReading{
			ProviderName: p.name,
			Date:         weather.DayStart(time.Unix(d.DateEpoch, 0).UTC()),
			MinTempC:     d.Day.MinTempC,
			MaxTempC:     d.Day.MaxTempC,
			HumidityPct:  d.Day.AvgHumidity,
			// Convert wind from kph to m/s.
			WindSpeedMS: d.Day.MaxWindKph / 3.6,
			Condition:   mapWeatherAPICondition(d.Day.Condition.Text),
		})
	}
	return out, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAnyFold(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAnyFold(text, "fog", "mist"):
		return weather.ConditionMist
	case common.HasAnyFold(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
