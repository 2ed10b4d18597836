package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

const (
	// minBars is the shortest history a risk score may be computed from.
	minBars = 30

	// volatilityWindow bounds the return sample for the headline
	// volatility figure; drawdown and VaR use the full window.
	volatilityWindow = 30

	varConfidence = 0.95

	// Reference ranges for normalizing raw risk measures to 0-100.
	// 80% annualized volatility or a 50% drawdown saturates the
	// respective component.
	refVolatility = 0.80
	refDrawdown   = 0.50

	weightVolatility = 0.6
	weightDrawdown   = 0.4
)

// Calculator produces the daily risk score for a symbol from its price
// history.
type Calculator struct {
	prices      contracts.PriceRepository
	historyDays int
	logger      *logger.Logger
}

func NewCalculator(prices contracts.PriceRepository, historyDays int, log *logger.Logger) *Calculator {
	return &Calculator{prices: prices, historyDays: historyDays, logger: log}
}

// Calculate scores one symbol for the given date. Fewer than 30 bars
// fails the symbol with ErrDataUnavailable; a partial score is never
// fabricated.
func (c *Calculator) Calculate(ctx context.Context, symbol string, date time.Time) (*contracts.RiskScore, error) {
	start := date.AddDate(0, 0, -c.historyDays)
	bars, err := c.prices.GetBySymbolAndDateRange(ctx, symbol, start, date)
	if err != nil {
		return nil, fmt.Errorf("load price history for %s: %w", symbol, err)
	}
	if len(bars) < minBars {
		return nil, contracts.DataUnavailableError(symbol, fmt.Sprintf("risk needs %d bars, have %d", minBars, len(bars)))
	}

	closes := contracts.Closes(bars)
	returns := LogReturns(closes)

	recent := returns
	if len(recent) > volatilityWindow {
		recent = recent[len(recent)-volatilityWindow:]
	}

	volatility := AnnualizedVolatility(recent)
	drawdown := MaxDrawdown(closes)
	valueAtRisk := HistoricalVaR(returns, varConfidence)

	score := blendScore(volatility, drawdown)

	result := &contracts.RiskScore{
		Symbol:        symbol,
		Date:          date,
		Volatility30D: volatility,
		MaxDrawdown:   drawdown,
		ValueAtRisk:   valueAtRisk,
		Score:         score,
		Level:         levelFor(score),
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"volatility": volatility,
		"drawdown":   drawdown,
		"var_95":     valueAtRisk,
		"risk_score": score,
		"risk_level": result.Level,
	}).Debug("Risk score calculated")

	return result, nil
}

// blendScore normalizes volatility and drawdown against their reference
// ranges and blends them to 0-100. Monotone non-decreasing in both
// inputs.
func blendScore(volatility, drawdown float64) float64 {
	volComponent := clamp01(volatility/refVolatility) * 100
	ddComponent := clamp01(drawdown/refDrawdown) * 100
	return weightVolatility*volComponent + weightDrawdown*ddComponent
}

func levelFor(score float64) string {
	switch {
	case score < 33:
		return contracts.RiskLow
	case score <= 66:
		return contracts.RiskMedium
	default:
		return contracts.RiskHigh
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
