package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/juju/clock"

	httpapi "github.com/i474232898/sunshine/internal/api/http"
	"github.com/i474232898/sunshine/internal/app"
	"github.com/i474232898/sunshine/internal/binding"
	"github.com/i474232898/sunshine/internal/config"
	"github.com/i474232898/sunshine/internal/format"
	"github.com/i474232898/sunshine/internal/looper"
	"github.com/i474232898/sunshine/internal/store"
	"github.com/i474232898/sunshine/internal/syncer"
	"github.com/i474232898/sunshine/internal/syncer/providers"
	"github.com/i474232898/sunshine/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("sunshine stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, store.Options{
		Backend: cfg.Store,
		Path:    cfg.DBPath,
		MaxDays: cfg.StoreMaxDays,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("forecast store opened", slog.String("backend", cfg.Store))

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	provs := []weather.ForecastProvider{
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey),
		providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey),
	}
	// Open-Meteo needs no key of its own, but locations without coordinates
	// are geocoded through Google.
	var geo providers.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient, geo))

	sy := syncer.New(syncer.Config{
		Store:     db,
		Providers: provs,
		Days:      cfg.ForecastDays,
		Timeout:   cfg.SyncTimeout,
		Logger:    log,
	})
	defer sy.Close()

	loop := looper.New(log, 0)
	defer func() {
		loop.Kill()
		_ = loop.Wait()
	}()

	prefs := config.NewPreferences(cfg)
	var (
		screen    *app.Main
		screenErr error
	)
	err = loop.Call(ctx, func() {
		screen, screenErr = app.New(app.Config{
			Mode:         binding.ModeFor(cfg.TwoPane),
			Querier:      db,
			Poster:       loop,
			Preferences:  prefs,
			Sync:         sy,
			Formatter:    format.New(clock.WallClock),
			Clock:        clock.WallClock,
			QueryTimeout: cfg.QueryTimeout,
			ListWindow:   cfg.ListWindow,
			Logger:       log,
		})
		if screenErr == nil {
			screen.Start(nil)
		}
	})
	if err != nil {
		return err
	}
	if screenErr != nil {
		return screenErr
	}
	defer func() {
		_ = loop.Call(context.Background(), screen.Stop)
	}()

	// Fill the store for the preferred location; the list reloads when it lands.
	sy.SyncNow(prefs.Location())

	// Basic app configuration
	fa := fiber.New(fiber.Config{
		AppName:               "sunshine",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	fa.Use(logger.New())
	fa.Use(recover.New())

	fa.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "sunshine",
			"mode":    screen.Mode().String(),
		})
	})

	httpapi.RegisterRoutes(fa, httpapi.Deps{
		Loop:     loop,
		Screen:   screen,
		Settings: prefs,
		Timeout:  cfg.QueryTimeout,
	})

	go func() {
		if err := fa.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", slog.Any("error", err))
			stop()
		}
	}()
	log.Info("sunshine started", slog.String("port", cfg.Port), slog.String("mode", screen.Mode().String()))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fa.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", slog.Any("error", err))
	}
	return nil
}
