package quant

import (
	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

// ValuationScorer turns fundamental snapshots into relative valuation scores.
// Scores are cross-sectional: a symbol is cheap or expensive only compared to
// the rest of the universe on the same day.
type ValuationScorer struct {
	logger *logger.Logger
}

func NewValuationScorer(log *logger.Logger) *ValuationScorer {
	return &ValuationScorer{logger: log}
}

// Ratios derives P/E and P/B from a snapshot. A ratio is unavailable when its
// denominator is zero or negative; negative earnings make P/E meaningless
// rather than "very cheap".
func (s *ValuationScorer) Ratios(snap *contracts.FundamentalSnapshot) (pe, pb contracts.Metric) {
	if snap == nil || snap.Price <= 0 {
		return contracts.Metric{}, contracts.Metric{}
	}
	if snap.EarningsPerShare > 0 {
		pe = contracts.MetricOf(snap.Price / snap.EarningsPerShare)
	}
	if snap.BookValuePerShare > 0 {
		pb = contracts.MetricOf(snap.Price / snap.BookValuePerShare)
	}
	return pe, pb
}

// UniverseRatios is the day's cross-section of valuation ratios, used as the
// ranking population for percentile scores.
type UniverseRatios struct {
	PE []float64
	PB []float64
}

func (u *UniverseRatios) Add(pe, pb contracts.Metric) {
	if pe.Valid {
		u.PE = append(u.PE, pe.Value)
	}
	if pb.Valid {
		u.PB = append(u.PB, pb.Value)
	}
}

// Score ranks a symbol's ratios inside the universe cross-section. Lower
// ratios rank higher. Each available ratio contributes its percentile rank
// and the result is their mean; with neither ratio available the score is
// unavailable and the caller falls back to technicals alone.
func (s *ValuationScorer) Score(symbol string, pe, pb contracts.Metric, universe *UniverseRatios) contracts.Metric {
	var parts []float64
	if pe.Valid && len(universe.PE) > 0 {
		parts = append(parts, percentileRankInverted(universe.PE, pe.Value))
	}
	if pb.Valid && len(universe.PB) > 0 {
		parts = append(parts, percentileRankInverted(universe.PB, pb.Value))
	}
	if len(parts) == 0 {
		s.logger.WithField("symbol", symbol).Debug("No valuation ratios available")
		return contracts.Metric{}
	}

	sum := 0.0
	for _, p := range parts {
		sum += p
	}
	return contracts.MetricOf(sum / float64(len(parts)))
}

// percentileRankInverted scores v against the population on a 0-100 scale
// where the smallest value scores 100. The population includes v itself, so
// one tie is discounted.
func percentileRankInverted(population []float64, v float64) float64 {
	if len(population) <= 1 {
		return 50
	}
	greater, equal := 0, 0
	for _, x := range population {
		switch {
		case x > v:
			greater++
		case x == v:
			equal++
		}
	}
	if equal > 0 {
		equal--
	}
	return 100 * (float64(greater) + 0.5*float64(equal)) / float64(len(population)-1)
}
