package predict

import (
	"time"

	"github.com/Alias1177/GoldPredictor/internal/forecast"
	"github.com/Alias1177/GoldPredictor/internal/format"
	"github.com/Alias1177/GoldPredictor/models"
)

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	SPX    *float64 `json:"spx" binding:"required"`
	USO    *float64 `json:"uso" binding:"required"`
	EURUSD *float64 `json:"eur_usd" binding:"required"`
	SLV    *float64 `json:"slv" binding:"required"`
}

func (r PredictRequest) Features() models.Features {
	return models.Features{SPX: *r.SPX, USO: *r.USO, EURUSD: *r.EURUSD, SLV: *r.SLV}
}

// RateResponse describes the quote a prediction used.
type RateResponse struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	Warning   string    `json:"warning,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"` // fetch or parse when the primary endpoint failed
	FetchedAt time.Time `json:"fetched_at"`
	Formatted string    `json:"formatted"`
}

func newRateResponse(q models.RateQuote) RateResponse {
	return RateResponse{
		Rate:      q.Rate,
		Source:    q.Source,
		Warning:   q.Warning,
		ErrorKind: string(forecast.RateErrorKind(q.Cause)),
		FetchedAt: q.FetchedAt,
		Formatted: format.Rate(q.Rate),
	}
}

// PredictResponse is one prediction.
type PredictResponse struct {
	ID        string          `json:"id"`
	Features  models.Features `json:"features"`
	PriceUSD  float64         `json:"price_usd"`
	PriceINR  float64         `json:"price_inr"`
	Rate      RateResponse    `json:"rate"`
	Formatted format.Result   `json:"formatted"`
	CreatedAt time.Time       `json:"created_at"`
}

func newPredictResponse(p *models.Prediction) PredictResponse {
	return PredictResponse{
		ID:        p.ID,
		Features:  p.Features,
		PriceUSD:  p.PriceUSD,
		PriceINR:  p.PriceINR,
		Rate:      newRateResponse(p.Rate),
		Formatted: format.Prediction(p),
		CreatedAt: p.CreatedAt,
	}
}

// HistoryResponse lists journal entries, newest first.
type HistoryResponse struct {
	Items []PredictResponse `json:"items"`
}

// ErrorResponse carries the error kind (input, model) next to the message.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
