package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

const (
	// maxQualitativeNudge bounds how far sentiment can move the
	// quantitative base, in points.
	maxQualitativeNudge = 10.0

	// riskNeutralMidpoint and riskPenaltySlope shape the risk
	// adjustment: only risk above the midpoint depresses the score,
	// and risk never inflates it.
	riskNeutralMidpoint = 50.0
	riskPenaltySlope    = 0.5

	buyThreshold  = 70.0
	sellThreshold = 40.0

	maxRecommendationThemes = 5
)

// Synthesizer folds the quantitative, risk and optional qualitative
// scores into the day's terminal recommendation.
type Synthesizer struct {
	logger *logger.Logger
}

func NewSynthesizer(log *logger.Logger) *Synthesizer {
	return &Synthesizer{logger: log}
}

// Synthesize builds the recommendation for one symbol. Quant and risk
// are mandatory: without both, no recommendation exists for the day and
// ErrDataUnavailable is returned. Qualitative is optional; absence
// lowers confidence to MEDIUM but never blocks emission.
func (s *Synthesizer) Synthesize(
	quant *contracts.QuantitativeScore,
	riskScore *contracts.RiskScore,
	qual *contracts.QualitativeScore,
	date time.Time,
) (*contracts.DailyRecommendation, error) {
	if quant == nil {
		return nil, contracts.DataUnavailableError("", "quantitative score")
	}
	if riskScore == nil {
		return nil, contracts.DataUnavailableError(quant.Symbol, "risk score")
	}

	base := quant.CompositeScore

	nudge := 0.0
	if qual != nil {
		nudge = maxQualitativeNudge * qual.Score * clamp01(qual.AvgConfidence)
	}

	penalty := 0.0
	if riskScore.Score > riskNeutralMidpoint {
		penalty = riskPenaltySlope * (riskScore.Score - riskNeutralMidpoint)
	}

	composite := clamp(base+nudge-penalty, 0, 100)

	rec := &contracts.DailyRecommendation{
		Symbol:         quant.Symbol,
		Date:           date,
		Action:         actionFor(composite),
		CompositeScore: composite,
		QuantScore:     quant.CompositeScore,
		RiskScore:      riskScore.Score,
		Confidence:     contracts.ConfidenceMedium,
	}

	if qual != nil {
		score := qual.Score
		rec.QualitativeScore = &score
		rec.Confidence = contracts.ConfidenceHigh
		rec.Themes = topThemes(qual.Themes, maxRecommendationThemes)
	}
	rec.Summary = s.summarize(quant, riskScore, qual)

	s.logger.WithFields(map[string]interface{}{
		"symbol":     rec.Symbol,
		"action":     rec.Action,
		"composite":  rec.CompositeScore,
		"confidence": rec.Confidence,
	}).Debug("Recommendation synthesized")

	return rec, nil
}

// actionFor maps the final composite to an action. Both boundaries
// resolve to HOLD.
func actionFor(composite float64) string {
	switch {
	case composite > buyThreshold:
		return contracts.ActionBuy
	case composite < sellThreshold:
		return contracts.ActionSell
	default:
		return contracts.ActionHold
	}
}

func (s *Synthesizer) summarize(
	quant *contracts.QuantitativeScore,
	riskScore *contracts.RiskScore,
	qual *contracts.QualitativeScore,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quant %.1f, risk %s (%.1f)", quant.CompositeScore, riskScore.Level, riskScore.Score)
	if qual != nil {
		fmt.Fprintf(&b, ", sentiment %+.2f over %d articles", qual.Score, qual.ArticleCount)
	} else {
		b.WriteString(", no recent news coverage")
	}
	return b.String()
}

func topThemes(themes []contracts.ThemeCount, limit int) []string {
	if len(themes) == 0 {
		return nil
	}
	if len(themes) > limit {
		themes = themes[:limit]
	}
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Theme
	}
	return names
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
