package contracts

import "time"

// QuantitativeScore is the technical/valuation score record, one per
// symbol per trading day.
type QuantitativeScore struct {
	Symbol         string    `json:"symbol"`
	Date           time.Time `json:"date"`
	ValuationScore Metric    `json:"valuation_score"` // unavailable when fundamentals are missing
	TechnicalScore float64   `json:"technical_score"` // [0,100], mandatory
	CompositeScore float64   `json:"composite_score"` // [0,100]

	// Raw inputs behind the scores
	Details QuantDetails `json:"details"`
}

// QuantDetails contains the indicator and ratio values behind a
// quantitative score. Every field may individually be unavailable.
type QuantDetails struct {
	PERatio     Metric `json:"pe_ratio"`
	PBRatio     Metric `json:"pb_ratio"`
	RSI         Metric `json:"rsi"`
	MA50        Metric `json:"ma_50"`
	MA200       Metric `json:"ma_200"`
	VolumeTrend Metric `json:"volume_trend"` // last volume / 20-day average
}

// Risk levels thresholded from the 0-100 risk score
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// RiskScore is the volatility/drawdown/VaR record, one per symbol per
// trading day. Higher score means riskier.
type RiskScore struct {
	Symbol        string    `json:"symbol"`
	Date          time.Time `json:"date"`
	Volatility30D float64   `json:"volatility_30d"` // annualized stddev of daily log returns
	MaxDrawdown   float64   `json:"max_drawdown"`   // peak-to-trough decline, positive fraction
	ValueAtRisk   float64   `json:"value_at_risk"`  // 95% 1-day historical VaR, positive loss magnitude
	Score         float64   `json:"risk_score"`     // [0,100]
	Level         string    `json:"risk_level"`
}

// ThemeCount is one entry of a frequency-ranked theme set
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// QualitativeScore is the aggregated news sentiment for a symbol over
// the lookback window. It only exists when at least one qualifying
// sentiment result carried nonzero weight; "no data" is represented by
// the absence of the value, never by a zero score.
type QualitativeScore struct {
	Symbol        string       `json:"symbol"`
	Score         float64      `json:"score"`  // [-1,1], weighted mean
	Weight        float64      `json:"weight"` // sum of confidence*relevance
	AvgConfidence float64      `json:"avg_confidence"`
	ArticleCount  int          `json:"article_count"`
	Themes        []ThemeCount `json:"themes"`
}
