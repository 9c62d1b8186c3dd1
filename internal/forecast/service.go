// Package forecast runs the request pipeline: validate inputs, predict the
// USD price, resolve the USD->INR rate and convert.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/observability"
	"github.com/Alias1177/GoldPredictor/internal/regression"
	"github.com/Alias1177/GoldPredictor/models"
)

const DefaultHistoryLimit = 20

// Option configures a Service.
type Option func(*Service)

// WithJournal stores every successful prediction.
func WithJournal(j models.PredictionJournal) Option {
	return func(s *Service) { s.journal = j }
}

// WithMetrics records prediction outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the prediction pipeline shared by the web and bot front-ends.
type Service struct {
	predictor models.Predictor
	rates     models.RateProvider
	journal   models.PredictionJournal
	metrics   *observability.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

func NewService(predictor models.Predictor, rates models.RateProvider, opts ...Option) *Service {
	s := &Service{
		predictor: predictor,
		rates:     rates,
		now:       time.Now,
		logger:    log.With().Str("component", "forecast").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict runs one prediction. Rate failures never fail the call; they show up
// as a warning on the returned quote.
func (s *Service) Predict(ctx context.Context, f models.Features) (*models.Prediction, error) {
	if err := validate(f); err != nil {
		s.metrics.ObservePrediction(string(KindInput))
		return nil, err
	}

	usd, err := s.predictor.Predict(f)
	if err != nil {
		s.metrics.ObservePrediction(string(KindModel))
		s.logger.Error().Err(err).Interface("features", f).Msg("Model prediction failed")
		return nil, &Error{Kind: KindModel, Err: err}
	}

	quote := s.rates.GetRate(ctx)

	inr := usd * quote.Rate
	if math.IsNaN(inr) || math.IsInf(inr, 0) {
		s.metrics.ObservePrediction(string(KindModel))
		s.logger.Error().Float64("price_usd", usd).Float64("rate", quote.Rate).Msg("INR price overflowed")
		return nil, &Error{Kind: KindModel, Err: regression.ErrNonFinite}
	}

	p := &models.Prediction{
		ID:        uuid.NewString(),
		Features:  f,
		PriceUSD:  usd,
		PriceINR:  inr,
		Rate:      quote,
		CreatedAt: s.now(),
	}
	s.metrics.ObservePrediction("ok")

	s.logger.Info().
		Str("id", p.ID).
		Float64("price_usd", p.PriceUSD).
		Float64("price_inr", p.PriceINR).
		Float64("rate", quote.Rate).
		Str("rate_source", quote.Source).
		Bool("fallback_rate", quote.IsFallback()).
		Msg("Prediction completed")

	if s.journal != nil {
		if err := s.journal.SavePrediction(ctx, *p); err != nil {
			s.logger.Warn().Err(err).Str("id", p.ID).Msg("Could not save prediction to journal")
		}
	}

	return p, nil
}

// Rate returns the current USD->INR quote.
func (s *Service) Rate(ctx context.Context) models.RateQuote {
	return s.rates.GetRate(ctx)
}

// History returns the most recent journal entries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Prediction, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	preds, err := s.journal.RecentPredictions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return preds, nil
}

// Ready reports whether the journal, if any, is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Ping(ctx)
}

var errNotFinite = errors.New("must be a finite number")

func validate(f models.Features) error {
	for i, v := range f.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Error{Kind: KindInput, Field: models.FeatureNames[i], Err: errNotFinite}
		}
	}
	return nil
}
