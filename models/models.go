package models

import (
	"time"
)

// Features is the model input: four market indicators entered by the user
type Features struct {
	SPX    float64 `json:"spx"`
	USO    float64 `json:"uso"`
	EURUSD float64 `json:"eur_usd"`
	SLV    float64 `json:"slv"`
}

// FeatureNames lists the indicators in the order Vector returns them.
var FeatureNames = []string{"SPX", "USO", "EUR/USD", "SLV"}

// Vector returns the features in the order the form collects them.
func (f Features) Vector() []float64 {
	return []float64{f.SPX, f.USO, f.EURUSD, f.SLV}
}

// DefaultFeatures are the values the form is prefilled with
var DefaultFeatures = Features{SPX: 4200.0, USO: 75.0, EURUSD: 1.08, SLV: 22.0}

// Rate sources
const (
	RateSourcePrimary   = "primary"   // /convert endpoint
	RateSourceSecondary = "secondary" // /latest endpoint
	RateSourceStatic    = "static"    // hardcoded fallback
)

// RateQuote is a resolved USD->INR exchange rate
type RateQuote struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Warning   string    `json:"warning,omitempty"` // set when the static fallback was used
	Cause     error     `json:"-"`
}

// IsFallback reports whether the quote is the hardcoded constant.
func (q RateQuote) IsFallback() bool {
	return q.Source == RateSourceStatic
}

// Prediction is one completed request: model output plus INR conversion
type Prediction struct {
	ID        string    `json:"id"`
	Features  Features  `json:"features"`
	PriceUSD  float64   `json:"price_usd"`
	PriceINR  float64   `json:"price_inr"`
	Rate      RateQuote `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}
