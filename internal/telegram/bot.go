// Package telegram is the chat front-end: the same prediction pipeline as the
// web form, driven by /predict and /rate commands.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/forecast"
	"github.com/Alias1177/GoldPredictor/internal/format"
	"github.com/Alias1177/GoldPredictor/models"
)

const (
	welcomeText = "💰 Gold Price Prediction Bot\n\n" +
		"Predict gold price in USD and INR from four market indicators.\n\n" +
		usageText

	usageText = "Usage:\n" +
		"/predict SPX USO EURUSD SLV, e.g. /predict 4200 75 1.08 22\n" +
		"/rate for the current USD to INR rate"
)

var errArgCount = errors.New("expected 4 numbers: SPX USO EURUSD SLV")

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Forecaster is the pipeline the bot drives.
type Forecaster interface {
	Predict(ctx context.Context, f models.Features) (*models.Prediction, error)
	Rate(ctx context.Context) models.RateQuote
}

type Bot struct {
	sender Sender
	svc    Forecaster
	logger zerolog.Logger
}

func New(sender Sender, svc Forecaster) *Bot {
	return &Bot{
		sender: sender,
		svc:    svc,
		logger: log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run handles updates until ctx is cancelled or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage replies to one incoming message.
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start", "help":
		msg := tgbotapi.NewMessage(chatID, welcomeText)
		msg.ReplyMarkup = mainMenuKeyboard()
		b.send(msg)
	case "predict":
		b.send(tgbotapi.NewMessage(chatID, b.predict(ctx, message.CommandArguments())))
	case "rate":
		b.send(tgbotapi.NewMessage(chatID, b.rate(ctx)))
	default:
		b.send(tgbotapi.NewMessage(chatID, usageText))
	}
}

func (b *Bot) predict(ctx context.Context, args string) string {
	features, err := ParseFeatures(args)
	if err != nil {
		return "Error while predicting: " + forecast.UserMessage(err) + "\n\n" + usageText
	}

	p, err := b.svc.Predict(ctx, features)
	if err != nil {
		return "Error while predicting: " + forecast.UserMessage(err)
	}

	res := format.Prediction(p)
	text := strings.Join(res.Lines(), "\n")
	if res.Warning != "" {
		text += "\n\n⚠️ " + res.Warning
	}
	return text
}

func (b *Bot) rate(ctx context.Context) string {
	q := b.svc.Rate(ctx)
	text := format.QuoteLine(q)
	if q.Warning != "" {
		text += "\n⚠️ " + q.Warning
	}
	return text
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send message")
	}
}

// ParseFeatures reads "SPX USO EURUSD SLV" separated by spaces.
func ParseFeatures(args string) (models.Features, error) {
	parts := strings.Fields(args)
	if len(parts) != len(models.FeatureNames) {
		return models.Features{}, &forecast.Error{Kind: forecast.KindInput, Err: errArgCount}
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return models.Features{}, &forecast.Error{
				Kind:  forecast.KindInput,
				Field: models.FeatureNames[i],
				Err:   errors.New("must be a number"),
			}
		}
		vals[i] = v
	}
	return models.Features{SPX: vals[0], USO: vals[1], EURUSD: vals[2], SLV: vals[3]}, nil
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	f := models.DefaultFeatures
	example := "/predict " + strings.Join([]string{
		strconv.FormatFloat(f.SPX, 'f', -1, 64),
		strconv.FormatFloat(f.USO, 'f', -1, 64),
		strconv.FormatFloat(f.EURUSD, 'f', -1, 64),
		strconv.FormatFloat(f.SLV, 'f', -1, 64),
	}, " ")

	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(example),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/rate"),
		),
	)
}
