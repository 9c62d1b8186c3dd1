package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/app"
	"github.com/Alias1177/GoldPredictor/internal/config"
	"github.com/Alias1177/GoldPredictor/internal/platform/logger"
	"github.com/Alias1177/GoldPredictor/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info")
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Setup(cfg.LogLevel)

	if cfg.Telegram.Token == "" {
		log.Fatal().Msg("GOLD_TELEGRAM_TOKEN not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	// Initialize Telegram bot
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	bot.Debug = cfg.Telegram.Debug
	log.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(cfg.Telegram.Timeout.Seconds())
	updates := bot.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutdown signal received, stopping bot")
		bot.StopReceivingUpdates()
	}()

	telegram.New(bot, a.Service).Run(ctx, updates)
	log.Info().Msg("Bot stopped")
}
