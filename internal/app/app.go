package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/api/exchangerate"
	"github.com/Alias1177/GoldPredictor/internal/api/web"
	"github.com/Alias1177/GoldPredictor/internal/api/web/controllers/predict"
	"github.com/Alias1177/GoldPredictor/internal/api/web/controllers/system"
	"github.com/Alias1177/GoldPredictor/internal/config"
	"github.com/Alias1177/GoldPredictor/internal/database"
	"github.com/Alias1177/GoldPredictor/internal/forecast"
	"github.com/Alias1177/GoldPredictor/internal/observability"
	"github.com/Alias1177/GoldPredictor/internal/rates"
	"github.com/Alias1177/GoldPredictor/internal/rediscache"
	"github.com/Alias1177/GoldPredictor/internal/regression"
	"github.com/Alias1177/GoldPredictor/models"
)

// App holds the wired pipeline shared by the web server and the bot.
type App struct {
	cfg     *config.Config
	Service *forecast.Service
	Metrics *observability.Metrics
	closers []func() error
	checks  []func(ctx context.Context) error
}

// New loads the model and connects the optional backends. A configured but
// unreachable Redis degrades to the in-memory cache; a configured but
// unreachable database is an error.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, Metrics: observability.NewMetrics("")}

	model, err := regression.LoadFromFile(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	log.Info().Str("path", cfg.ModelPath).Str("kind", string(model.Kind())).Msg("Model loaded")

	client := exchangerate.NewClient(exchangerate.ClientOptions{
		BaseURL:        cfg.Rates.BaseURL,
		RequestTimeout: cfg.Rates.Timeout,
		RequestsPerSec: cfg.Rates.RequestsPerSec,
	})

	var cache models.RateCache
	if cfg.Redis.Enabled() {
		rc, err := rediscache.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-memory rate cache")
		} else {
			cache = rc
			a.closers = append(a.closers, rc.Close)
			a.checks = append(a.checks, rc.Ping)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis rate cache")
		}
	}

	provider := rates.NewProvider(client, cache, rates.Options{
		TTL:          cfg.Rates.TTL,
		FallbackRate: cfg.Rates.Fallback,
		Metrics:      a.Metrics,
	})

	opts := []forecast.Option{forecast.WithMetrics(a.Metrics)}
	if cfg.DB.Enabled() {
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		opts = append(opts, forecast.WithJournal(db))
		log.Info().Str("host", cfg.DB.Host).Msg("Prediction journal enabled")
	}

	a.Service = forecast.NewService(model, provider, opts...)
	a.checks = append(a.checks, a.Service.Ready)
	return a, nil
}

// Ready reports whether Redis (if used) and the journal (if configured) answer.
func (a *App) Ready(ctx context.Context) error {
	for _, check := range a.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Server builds the HTTP server with every controller registered.
func (a *App) Server() *web.Server {
	srv := web.NewServer(a.cfg.HTTP, a.Metrics)
	srv.AddController(
		system.New(a, a.Metrics.Handler()),
		predict.New(a.Service),
	)
	return srv
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
