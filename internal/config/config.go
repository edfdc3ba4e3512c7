package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"

	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var validate = validator.New()

type AppConfig struct {
	// Location is the initial preferred location setting (postal code or "City,CC").
	Location string `validate:"required"`
	Units    string `validate:"oneof=metric imperial"`

	// TwoPane selects the combined master/detail layout.
	TwoPane bool

	// Store selects the forecast store backend.
	Store string `validate:"oneof=sqlite memory"`
	// DBPath is the SQLite database file; ":memory:" keeps everything in process.
	DBPath string `validate:"required"`
	// StoreMaxDays caps the days the memory store keeps per location; 0 means unlimited.
	StoreMaxDays int `validate:"gte=0"`

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	HTTPTimeout  time.Duration `validate:"gt=0"`
	QueryTimeout time.Duration `validate:"gte=0"`
	SyncTimeout  time.Duration `validate:"gt=0"`

	// ForecastDays is how many days each sync asks providers for.
	ForecastDays int `validate:"min=1,max=16"`

	// ListWindow is how many rows the list lays out at once.
	ListWindow int `validate:"min=1,max=100"`

	Port     string `validate:"required,numeric"`
	LogLevel slog.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", slog.Any("error", err))
	}
	cfg := &AppConfig{}

	cfg.Location = strings.TrimSpace(getenvDefault("SUNSHINE_LOCATION", "94043"))
	cfg.Units = strings.ToLower(getenvDefault("SUNSHINE_UNITS", UnitsMetric))
	cfg.TwoPane = getenvBool("SUNSHINE_TWO_PANE", false)
	cfg.Store = strings.ToLower(getenvDefault("SUNSHINE_STORE", StoreSQLite))
	cfg.DBPath = getenvDefault("SUNSHINE_DB_PATH", "sunshine.db")
	cfg.StoreMaxDays = getenvInt("STORE_MAX_DAYS", 0)

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = getenvDuration("QUERY_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.SyncTimeout, err = getenvDuration("SYNC_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 14)
	cfg.ListWindow = getenvInt("LIST_WINDOW", 10)
	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsMetric reports whether temperatures are shown in Celsius.
func (c *AppConfig) IsMetric() bool {
	return c.Units != UnitsImperial
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
