// Package syncer refreshes the forecast store from the configured providers.
// It is the sync trigger the coordinator pulls when the preferred location
// changes; there is no periodic schedule.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/sunshine/internal/weather"
)

var (
	// ErrNoProviders is returned when the syncer has nothing to ask.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoForecast is returned when every provider failed or returned nothing.
	ErrNoForecast = errors.New("no forecast data available")
)

// Store is where synced forecasts land.
type Store interface {
	SaveForecast(ctx context.Context, loc weather.Location, days []weather.DayForecast) error
	PurgeBefore(ctx context.Context, cutoff int64) (int64, error)
}

// Config configures a Syncer.
type Config struct {
	Store     Store
	Providers []weather.ForecastProvider
	// Days is how many forecast days to request.
	Days int
	// Timeout bounds one sync run.
	Timeout time.Duration
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Syncer fetches from every provider concurrently, aggregates per day and
// saves the result. Concurrent requests for the same location share one run.
type Syncer struct {
	cfg    Config
	logger *slog.Logger
	group  singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders wg.Add in SyncNow against Close.
	mu     sync.Mutex
	closed bool
}

// New creates a Syncer.
func New(cfg Config) *Syncer {
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Days <= 0 {
		cfg.Days = 14
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("component", "syncer")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SyncNow starts a sync for location in the background and returns at once.
// Requests after Close are ignored.
func (s *Syncer) SyncNow(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Sync(s.ctx, location); err != nil {
			s.logger.Warn("sync failed", slog.String("location", location), slog.Any("error", err))
		}
	}()
}

// Sync runs a sync for location and waits for it. If one is already running
// for the same location, Sync waits for that one instead.
func (s *Syncer) Sync(ctx context.Context, location string) error {
	ch := s.group.DoChan(location, func() (interface{}, error) {
		return nil, s.run(location)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// Close cancels running syncs and waits for them.
// Close may be called more than once.
func (s *Syncer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

func (s *Syncer) run(location string) error {
	if len(s.cfg.Providers) == 0 {
		return ErrNoProviders
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run", runID), slog.String("location", location))
	start := s.cfg.Clock.Now()
	logger.Debug("sync started", slog.Int("providers", len(s.cfg.Providers)))

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	req := weather.LocationFromSetting(location)
	loc := req

	var (
		mu       sync.Mutex
		readings []weather.ProviderReading
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.cfg.Providers {
		g.Go(func() error {
			f, err := p.FetchForecast(gctx, req, s.cfg.Days)
			if err != nil {
				// Log and continue; we want partial success when possible.
				logger.Warn("provider forecast failed", slog.String("provider", p.Name()), slog.Any("error", err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			readings = append(readings, f.Readings...)
			if loc.City == "" {
				loc.City = f.City
			}
			if !loc.HasCoordinates() && f.Lat != nil && f.Lon != nil {
				loc.Lat, loc.Lon = f.Lat, f.Lon
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(readings) == 0 {
		// No providers succeeded; do not overwrite the last good forecast.
		return ErrNoForecast
	}

	days := AggregateForecast(readings, s.cfg.Days)
	if err := s.cfg.Store.SaveForecast(ctx, loc, days); err != nil {
		return fmt.Errorf("save forecast: %w", err)
	}

	// Old days are not shown anywhere; drop them so the history stays bounded.
	purged, err := s.cfg.Store.PurgeBefore(ctx, weather.DayStart(s.cfg.Clock.Now()))
	if err != nil {
		logger.Warn("purge failed", slog.Any("error", err))
	}

	logger.Info("sync finished",
		slog.Int("days", len(days)),
		slog.Int64("purged", purged),
		slog.Duration("took", s.cfg.Clock.Now().Sub(start)),
	)
	return nil
}
