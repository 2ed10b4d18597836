package contracts

import "time"

// PriceBar is one daily OHLCV bar for a symbol. Bars are immutable once
// stored and appended daily; sequences are ascending by date and
// date-unique per symbol.
type PriceBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalSnapshot carries the per-share fundamentals used for
// P/E and P/B. Sparse: updated irregularly as statements are filed.
type FundamentalSnapshot struct {
	Symbol            string    `json:"symbol"`
	AsOfDate          time.Time `json:"as_of_date"`
	Price             float64   `json:"price"`
	EarningsPerShare  float64   `json:"earnings_per_share"`
	BookValuePerShare float64   `json:"book_value_per_share"`
}

// Metric is a float measurement that may be unavailable. The zero value
// is "unavailable"; downstream scoring renormalizes over valid metrics
// instead of fabricating defaults.
type Metric struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// MetricOf returns a valid Metric
func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Closes extracts the close series from an ascending bar sequence
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
