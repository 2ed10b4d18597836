package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

func makeBars(closes []float64, volume int64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = contracts.PriceBar{
			Symbol: "BBCA.JK",
			Date:   base.AddDate(0, 0, i),
			Open:   c, High: c, Low: c, Close: c,
			Volume: volume,
		}
	}
	return bars
}

func TestRelativeStrengthIndex(t *testing.T) {
	t.Run("insufficient history is unavailable not an error", func(t *testing.T) {
		closes := make([]float64, 14)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		rsi := relativeStrengthIndex(closes, rsiPeriod)
		assert.False(t, rsi.Valid)
	})

	t.Run("monotone uptrend saturates at 100", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		rsi := relativeStrengthIndex(closes, rsiPeriod)
		assert.True(t, rsi.Valid)
		assert.InDelta(t, 100, rsi.Value, 0.001)
	})

	t.Run("flat series is neutral", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100
		}
		rsi := relativeStrengthIndex(closes, rsiPeriod)
		assert.True(t, rsi.Valid)
		assert.InDelta(t, 50, rsi.Value, 0.001)
	})

	t.Run("alternating gains and losses stay near 50", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100
			if i%2 == 1 {
				closes[i] = 101
			}
		}
		rsi := relativeStrengthIndex(closes, rsiPeriod)
		assert.True(t, rsi.Valid)
		assert.InDelta(t, 50, rsi.Value, 5)
	})
}

func TestSimpleMovingAverage(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	ma := simpleMovingAverage(closes, 50)
	assert.True(t, ma.Valid)
	// mean of 11..60
	assert.InDelta(t, 35.5, ma.Value, 0.001)

	assert.False(t, simpleMovingAverage(closes, 200).Valid)
}

func TestVolumeTrend(t *testing.T) {
	t.Run("constant volume is flat", func(t *testing.T) {
		bars := makeBars(make([]float64, 25), 100)
		for i := range bars {
			bars[i].Close = 100
		}
		trend := volumeTrend(bars, volumeTrendWindow)
		assert.True(t, trend.Valid)
		assert.InDelta(t, 1.0, trend.Value, 0.001)
	})

	t.Run("volume spike lifts the ratio", func(t *testing.T) {
		bars := makeBars(make([]float64, 25), 100)
		bars[len(bars)-1].Volume = 200
		trend := volumeTrend(bars, volumeTrendWindow)
		assert.True(t, trend.Valid)
		// avg over last 20 = (19*100 + 200)/20 = 105
		assert.InDelta(t, 200.0/105.0, trend.Value, 0.001)
	})

	t.Run("short history is unavailable", func(t *testing.T) {
		bars := makeBars(make([]float64, 10), 100)
		assert.False(t, volumeTrend(bars, volumeTrendWindow).Valid)
	})
}

func TestIndicatorCalculatorShortHistory(t *testing.T) {
	calc := NewIndicatorCalculator(logger.NewNop())

	closes := []float64{100, 101, 102}
	set := calc.Calculate("BBCA.JK", makeBars(closes, 1000))

	assert.False(t, set.RSI.Valid)
	assert.False(t, set.MA50.Valid)
	assert.False(t, set.MA200.Valid)
	assert.False(t, set.VolumeTrend.Valid)
	assert.Equal(t, 102.0, set.LastClose)
}
