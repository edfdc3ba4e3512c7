package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

// Backends accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Forecasts is a queryable, observable forecast store.
type Forecasts interface {
	Query(ctx context.Context, d query.Descriptor) (query.ResultSet, error)
	Subscribe(fn func()) func()
	SaveForecast(ctx context.Context, loc weather.Location, days []weather.DayForecast) error
	PurgeBefore(ctx context.Context, cutoff int64) (int64, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the SQLite database file.
	Path string
	// MaxDays caps the days the memory store keeps per location.
	MaxDays int
	Logger  *slog.Logger
}

// Open creates the store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Forecasts, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(opts.MaxDays), nil
	case BackendSQLite, "":
		return OpenSQLite(ctx, opts.Path, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
