package quant

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

// Component weights inside the technical score. When an indicator is
// unavailable its weight is redistributed over the rest.
const (
	weightRSI       = 0.4
	weightMATrend   = 0.4
	weightVolume    = 0.2
	weightValuation = 0.4
	weightTechnical = 0.6
)

// Volume trend bands: expanding activity is mildly bullish, fading activity
// mildly bearish.
const (
	volumeExpanding = 1.1
	volumeFading    = 0.9
)

// Analyzer produces the daily quantitative score for each symbol by blending
// relative valuation with technical indicators.
type Analyzer struct {
	indicators   *IndicatorCalculator
	valuation    *ValuationScorer
	prices       contracts.PriceRepository
	fundamentals contracts.FundamentalRepository
	historyDays  int
	logger       *logger.Logger
}

func NewAnalyzer(
	prices contracts.PriceRepository,
	fundamentals contracts.FundamentalRepository,
	historyDays int,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		indicators:   NewIndicatorCalculator(log),
		valuation:    NewValuationScorer(log),
		prices:       prices,
		fundamentals: fundamentals,
		historyDays:  historyDays,
		logger:       log,
	}
}

// BuildUniverseRatios collects the valuation cross-section for the whole
// universe. Symbols without fundamentals simply contribute nothing.
func (a *Analyzer) BuildUniverseRatios(ctx context.Context, symbols []string, asOf time.Time) (*UniverseRatios, error) {
	universe := &UniverseRatios{}
	for _, symbol := range symbols {
		snap, err := a.fundamentals.GetLatestBySymbol(ctx, symbol, asOf)
		if err != nil {
			return nil, fmt.Errorf("load fundamentals for %s: %w", symbol, err)
		}
		pe, pb := a.valuation.Ratios(snap)
		universe.Add(pe, pb)
	}
	a.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"pe_obs":  len(universe.PE),
		"pb_obs":  len(universe.PB),
	}).Debug("Universe valuation cross-section built")
	return universe, nil
}

// Analyze scores one symbol for the given date. It returns
// ErrDataUnavailable when no technical indicator can be computed at all;
// such a symbol is excluded from the day's run rather than scored at zero.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, date time.Time, universe *UniverseRatios) (*contracts.QuantitativeScore, error) {
	start := date.AddDate(0, 0, -a.historyDays)
	bars, err := a.prices.GetBySymbolAndDateRange(ctx, symbol, start, date)
	if err != nil {
		return nil, fmt.Errorf("load price history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, contracts.DataUnavailableError(symbol, "price history")
	}

	set := a.indicators.Calculate(symbol, bars)

	technical, ok := a.technicalScore(set)
	if !ok {
		return nil, contracts.DataUnavailableError(symbol, "technical indicators")
	}

	snap, err := a.fundamentals.GetLatestBySymbol(ctx, symbol, date)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals for %s: %w", symbol, err)
	}
	pe, pb := a.valuation.Ratios(snap)
	valuation := a.valuation.Score(symbol, pe, pb, universe)

	composite := technical
	if valuation.Valid {
		composite = weightValuation*valuation.Value + weightTechnical*technical
	}

	score := &contracts.QuantitativeScore{
		Symbol:         symbol,
		Date:           date,
		ValuationScore: valuation,
		TechnicalScore: technical,
		CompositeScore: clamp(composite, 0, 100),
		Details: contracts.QuantDetails{
			PERatio:     pe,
			PBRatio:     pb,
			RSI:         set.RSI,
			MA50:        set.MA50,
			MA200:       set.MA200,
			VolumeTrend: set.VolumeTrend,
		},
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"technical": technical,
		"valuation": valuation.Value,
		"composite": score.CompositeScore,
	}).Debug("Quantitative score calculated")

	return score, nil
}

// technicalScore blends RSI positioning, moving average alignment and volume
// trend. Weights over missing components are renormalized so a thin history
// still yields a usable score. Returns ok=false when nothing is available.
func (a *Analyzer) technicalScore(set IndicatorSet) (float64, bool) {
	var weighted, totalWeight float64

	if set.RSI.Valid {
		weighted += weightRSI * rsiScore(set.RSI.Value)
		totalWeight += weightRSI
	}
	if maScore, ok := maTrendScore(set); ok {
		weighted += weightMATrend * maScore
		totalWeight += weightMATrend
	}
	if set.VolumeTrend.Valid {
		weighted += weightVolume * volumeScore(set.VolumeTrend.Value)
		totalWeight += weightVolume
	}

	if totalWeight == 0 {
		return 0, false
	}
	return clamp(weighted/totalWeight, 0, 100), true
}

// rsiScore rewards neutral momentum. RSI at 50 scores 100; both overbought
// and oversold extremes decay linearly toward 0.
func rsiScore(rsi float64) float64 {
	return clamp(100-2*abs(rsi-50), 0, 100)
}

// maTrendScore reads trend alignment from price versus the moving averages.
// Above both averages is an uptrend, below both a downtrend, mixed is
// neutral. With only one average available the signal is softened.
func maTrendScore(set IndicatorSet) (float64, bool) {
	price := set.LastClose
	switch {
	case set.MA50.Valid && set.MA200.Valid:
		above50 := price > set.MA50.Value
		above200 := price > set.MA200.Value
		switch {
		case above50 && above200:
			return 80, true
		case !above50 && !above200:
			return 20, true
		default:
			return 50, true
		}
	case set.MA50.Valid:
		if price > set.MA50.Value {
			return 65, true
		}
		return 35, true
	case set.MA200.Valid:
		if price > set.MA200.Value {
			return 65, true
		}
		return 35, true
	}
	return 0, false
}

func volumeScore(trend float64) float64 {
	switch {
	case trend > volumeExpanding:
		return 75
	case trend < volumeFading:
		return 40
	default:
		return 60
	}
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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
