package contracts

import "time"

// Recommendation actions
const (
	ActionBuy  = "BUY"
	ActionHold = "HOLD"
	ActionSell = "SELL"
)

// Confidence labels. LOW is never emitted: a recommendation missing its
// mandatory quantitative or risk input is suppressed entirely.
const (
	ConfidenceLow    = "LOW"
	ConfidenceMedium = "MEDIUM"
	ConfidenceHigh   = "HIGH"
)

// DailyRecommendation is the terminal artifact of one pipeline run for
// one symbol. Immutable once written; superseded, never mutated, by the
// next run's record for the same symbol.
type DailyRecommendation struct {
	Symbol           string    `json:"symbol"`
	Date             time.Time `json:"date"`
	Action           string    `json:"action"`
	CompositeScore   float64   `json:"composite_score"`
	QuantScore       float64   `json:"quantitative_score"`
	QualitativeScore *float64  `json:"qualitative_score,omitempty"` // nil when no sentiment data
	RiskScore        float64   `json:"risk_score"`
	Confidence       string    `json:"confidence"`
	Themes           []string  `json:"themes,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasQualitative reports whether sentiment data contributed
func (r *DailyRecommendation) HasQualitative() bool {
	return r.QualitativeScore != nil
}
