package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

func TestRatios(t *testing.T) {
	scorer := NewValuationScorer(logger.NewNop())

	t.Run("healthy fundamentals produce both ratios", func(t *testing.T) {
		pe, pb := scorer.Ratios(&contracts.FundamentalSnapshot{
			Symbol:            "BBCA.JK",
			AsOfDate:          time.Now(),
			Price:             9000,
			EarningsPerShare:  450,
			BookValuePerShare: 1800,
		})
		assert.True(t, pe.Valid)
		assert.InDelta(t, 20, pe.Value, 0.001)
		assert.True(t, pb.Valid)
		assert.InDelta(t, 5, pb.Value, 0.001)
	})

	t.Run("negative earnings invalidate PE only", func(t *testing.T) {
		pe, pb := scorer.Ratios(&contracts.FundamentalSnapshot{
			Price:             5000,
			EarningsPerShare:  -120,
			BookValuePerShare: 2500,
		})
		assert.False(t, pe.Valid)
		assert.True(t, pb.Valid)
	})

	t.Run("missing snapshot yields no ratios", func(t *testing.T) {
		pe, pb := scorer.Ratios(nil)
		assert.False(t, pe.Valid)
		assert.False(t, pb.Valid)
	})
}

func TestPercentileRankInverted(t *testing.T) {
	population := []float64{10, 20, 30, 40}

	tests := []struct {
		name string
		v    float64
		want float64
	}{
		{"cheapest ranks highest", 10, 100},
		{"most expensive ranks lowest", 40, 0},
		{"second cheapest", 20, 100.0 * 2 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, percentileRankInverted(population, tt.v), 0.001)
		})
	}

	t.Run("singleton population is neutral", func(t *testing.T) {
		assert.InDelta(t, 50, percentileRankInverted([]float64{15}, 15), 0.001)
	})
}

func TestValuationScore(t *testing.T) {
	scorer := NewValuationScorer(logger.NewNop())
	universe := &UniverseRatios{
		PE: []float64{8, 12, 20, 35},
		PB: []float64{0.8, 1.5, 3, 6},
	}

	t.Run("both ratios average their percentiles", func(t *testing.T) {
		score := scorer.Score("TLKM.JK", contracts.MetricOf(8), contracts.MetricOf(6), universe)
		assert.True(t, score.Valid)
		// PE=8 ranks 100, PB=6 ranks 0
		assert.InDelta(t, 50, score.Value, 0.001)
	})

	t.Run("single available ratio stands alone", func(t *testing.T) {
		score := scorer.Score("GOTO.JK", contracts.Metric{}, contracts.MetricOf(0.8), universe)
		assert.True(t, score.Valid)
		assert.InDelta(t, 100, score.Value, 0.001)
	})

	t.Run("no ratios means no valuation score", func(t *testing.T) {
		score := scorer.Score("EMPTY.JK", contracts.Metric{}, contracts.Metric{}, universe)
		assert.False(t, score.Valid)
	})
}
