package format

import "github.com/Alias1177/GoldPredictor/models"

// Result is a prediction rendered for display.
type Result struct {
	USD     string `json:"usd"`
	INR     string `json:"inr"`
	Rate    string `json:"rate"`
	Warning string `json:"warning,omitempty"`
}

// Prediction formats p the way every front-end shows it.
func Prediction(p *models.Prediction) Result {
	return Result{
		USD:     USD(p.PriceUSD),
		INR:     INR(p.PriceINR),
		Rate:    Rate(p.Rate.Rate),
		Warning: p.Rate.Warning,
	}
}

// Lines returns the three result lines shown under the form.
func (r Result) Lines() []string {
	return []string{
		"Predicted Gold Price (USD): " + r.USD,
		"Predicted Gold Price (INR): " + r.INR,
		"Exchange Rate used: 1 USD = ₹" + r.Rate,
	}
}

// QuoteLine describes a bare rate quote.
func QuoteLine(q models.RateQuote) string {
	return "1 USD = ₹" + Rate(q.Rate) + " (" + q.Source + ")"
}
