package quant

import (
	"math"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

const (
	rsiPeriod         = 14
	shortMAWindow     = 50
	longMAWindow      = 200
	volumeTrendWindow = 20
)

// IndicatorSet holds the per-symbol technical indicators. Each value is a
// Metric so callers can tell "not computable from this history" apart from
// a legitimate zero.
type IndicatorSet struct {
	RSI         contracts.Metric
	MA50        contracts.Metric
	MA200       contracts.Metric
	VolumeTrend contracts.Metric
	LastClose   float64
}

// IndicatorCalculator derives technical indicators from daily price bars.
type IndicatorCalculator struct {
	logger *logger.Logger
}

func NewIndicatorCalculator(log *logger.Logger) *IndicatorCalculator {
	return &IndicatorCalculator{logger: log}
}

// Calculate computes all indicators from bars sorted by date ascending.
// Indicators whose window exceeds the available history come back invalid
// rather than erroring; the caller decides whether enough survived.
func (c *IndicatorCalculator) Calculate(symbol string, bars []contracts.PriceBar) IndicatorSet {
	set := IndicatorSet{}
	if len(bars) == 0 {
		return set
	}

	closes := contracts.Closes(bars)
	set.LastClose = closes[len(closes)-1]
	set.RSI = relativeStrengthIndex(closes, rsiPeriod)
	set.MA50 = simpleMovingAverage(closes, shortMAWindow)
	set.MA200 = simpleMovingAverage(closes, longMAWindow)
	set.VolumeTrend = volumeTrend(bars, volumeTrendWindow)

	c.logger.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"bars":         len(bars),
		"rsi_valid":    set.RSI.Valid,
		"ma50_valid":   set.MA50.Valid,
		"ma200_valid":  set.MA200.Valid,
		"volume_valid": set.VolumeTrend.Valid,
	}).Debug("Indicators calculated")

	return set
}

// relativeStrengthIndex implements Wilder's smoothed RSI. It needs period+1
// closes to seed the first average gain/loss.
func relativeStrengthIndex(closes []float64, period int) contracts.Metric {
	if len(closes) < period+1 {
		return contracts.Metric{}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return contracts.MetricOf(50)
		}
		return contracts.MetricOf(100)
	}

	rs := avgGain / avgLoss
	return contracts.MetricOf(100 - 100/(1+rs))
}

func simpleMovingAverage(closes []float64, window int) contracts.Metric {
	if len(closes) < window {
		return contracts.Metric{}
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return contracts.MetricOf(sum / float64(window))
}

// volumeTrend is the latest volume relative to its trailing average. Values
// above 1 mean activity is picking up.
func volumeTrend(bars []contracts.PriceBar, window int) contracts.Metric {
	if len(bars) < window {
		return contracts.Metric{}
	}
	sum := 0.0
	for _, b := range bars[len(bars)-window:] {
		sum += float64(b.Volume)
	}
	avg := sum / float64(window)
	if avg <= 0 || math.IsNaN(avg) {
		return contracts.Metric{}
	}
	latest := float64(bars[len(bars)-1].Volume)
	return contracts.MetricOf(latest / avg)
}
