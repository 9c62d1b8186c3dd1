package models

import (
	"context"
	"time"
)

// Predictor wraps a trained regression model
type Predictor interface {
	Predict(f Features) (float64, error)
}

// RateProvider resolves the USD->INR rate. It never fails: on error it
// degrades to a fallback quote.
type RateProvider interface {
	GetRate(ctx context.Context) RateQuote
}

// RateCache holds the last resolved quote until it expires.
type RateCache interface {
	Get(ctx context.Context) (quote RateQuote, found bool, err error)
	Set(ctx context.Context, quote RateQuote, ttl time.Duration) error
}

// PredictionJournal stores completed predictions
type PredictionJournal interface {
	SavePrediction(ctx context.Context, p Prediction) error
	RecentPredictions(ctx context.Context, limit int) ([]Prediction, error)
	Ping(ctx context.Context) error
}
