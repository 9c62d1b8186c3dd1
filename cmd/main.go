package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/app"
	"github.com/Alias1177/GoldPredictor/internal/config"
	"github.com/Alias1177/GoldPredictor/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info")
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Setup(cfg.LogLevel)
	printConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing backends")
		}
	}()

	if err := a.Server().Start(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped with error")
		return
	}
	log.Info().Msg("Server stopped")
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("ModelPath", cfg.ModelPath).
		Str("Addr", cfg.HTTP.Addr()).
		Str("RatesBaseURL", cfg.Rates.BaseURL).
		Dur("RatesTimeout", cfg.Rates.Timeout).
		Dur("RatesTTL", cfg.Rates.TTL).
		Float64("RatesFallback", cfg.Rates.Fallback).
		Bool("Redis", cfg.Redis.Enabled()).
		Bool("Journal", cfg.DB.Enabled()).
		Msg("Configuration loaded")
}
