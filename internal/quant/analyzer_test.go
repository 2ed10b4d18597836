package quant

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

type stubPriceRepo struct {
	bars map[string][]contracts.PriceBar
}

func (s *stubPriceRepo) GetBySymbolAndDateRange(_ context.Context, symbol string, _, _ time.Time) ([]contracts.PriceBar, error) {
	return s.bars[symbol], nil
}

func (s *stubPriceRepo) GetLatestDate(_ context.Context, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (s *stubPriceRepo) SaveBatch(_ context.Context, _ []contracts.PriceBar) error {
	return nil
}

type stubFundamentalRepo struct {
	snaps map[string]*contracts.FundamentalSnapshot
}

func (s *stubFundamentalRepo) GetLatestBySymbol(_ context.Context, symbol string, _ time.Time) (*contracts.FundamentalSnapshot, error) {
	return s.snaps[symbol], nil
}

func (s *stubFundamentalRepo) Save(_ context.Context, _ *contracts.FundamentalSnapshot) error {
	return nil
}

func trendingBars(symbol string, n int, start, step float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = contracts.PriceBar{
			Symbol: symbol,
			Date:   base.AddDate(0, 0, i),
			Open:   c, High: c, Low: c, Close: c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func newTestAnalyzer(prices *stubPriceRepo, funds *stubFundamentalRepo) *Analyzer {
	return NewAnalyzer(prices, funds, 365, logger.NewNop())
}

func TestAnalyzeFullHistory(t *testing.T) {
	symbols := []string{"BBCA.JK", "TLKM.JK", "ASII.JK"}
	prices := &stubPriceRepo{bars: map[string][]contracts.PriceBar{}}
	funds := &stubFundamentalRepo{snaps: map[string]*contracts.FundamentalSnapshot{}}
	for i, sym := range symbols {
		prices.bars[sym] = trendingBars(sym, 252, 1000, 2)
		funds.snaps[sym] = &contracts.FundamentalSnapshot{
			Symbol:            sym,
			Price:             1500,
			EarningsPerShare:  float64(50 + 30*i),
			BookValuePerShare: float64(400 + 100*i),
		}
	}

	analyzer := newTestAnalyzer(prices, funds)
	ctx := context.Background()
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	universe, err := analyzer.BuildUniverseRatios(ctx, symbols, date)
	require.NoError(t, err)
	assert.Len(t, universe.PE, 3)
	assert.Len(t, universe.PB, 3)

	score, err := analyzer.Analyze(ctx, "BBCA.JK", date, universe)
	require.NoError(t, err)

	assert.True(t, score.ValuationScore.Valid)
	assert.GreaterOrEqual(t, score.CompositeScore, 0.0)
	assert.LessOrEqual(t, score.CompositeScore, 100.0)
	assert.True(t, score.Details.RSI.Valid)
	assert.True(t, score.Details.MA50.Valid)
	assert.True(t, score.Details.MA200.Valid)
	assert.True(t, score.Details.VolumeTrend.Valid)

	want := weightValuation*score.ValuationScore.Value + weightTechnical*score.TechnicalScore
	assert.InDelta(t, want, score.CompositeScore, 0.001)
}

func TestAnalyzeWithoutFundamentals(t *testing.T) {
	prices := &stubPriceRepo{bars: map[string][]contracts.PriceBar{
		"GOTO.JK": trendingBars("GOTO.JK", 100, 80, -0.1),
	}}
	funds := &stubFundamentalRepo{snaps: map[string]*contracts.FundamentalSnapshot{}}

	analyzer := newTestAnalyzer(prices, funds)
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	score, err := analyzer.Analyze(context.Background(), "GOTO.JK", date, &UniverseRatios{})
	require.NoError(t, err)

	assert.False(t, score.ValuationScore.Valid)
	assert.InDelta(t, score.TechnicalScore, score.CompositeScore, 0.001)
}

func TestAnalyzeRenormalizesMissingIndicators(t *testing.T) {
	// 30 bars: RSI and volume trend computable, neither moving average is.
	prices := &stubPriceRepo{bars: map[string][]contracts.PriceBar{
		"ANTM.JK": trendingBars("ANTM.JK", 30, 2000, 5),
	}}
	funds := &stubFundamentalRepo{snaps: map[string]*contracts.FundamentalSnapshot{}}

	analyzer := newTestAnalyzer(prices, funds)
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	score, err := analyzer.Analyze(context.Background(), "ANTM.JK", date, &UniverseRatios{})
	require.NoError(t, err)

	assert.False(t, score.Details.MA50.Valid)
	assert.True(t, score.Details.RSI.Valid)
	assert.True(t, score.Details.VolumeTrend.Valid)

	want := (weightRSI*rsiScore(score.Details.RSI.Value) + weightVolume*volumeScore(score.Details.VolumeTrend.Value)) /
		(weightRSI + weightVolume)
	assert.InDelta(t, want, score.TechnicalScore, 0.001)
}

func TestAnalyzeExcludesSymbolWithoutIndicators(t *testing.T) {
	prices := &stubPriceRepo{bars: map[string][]contracts.PriceBar{
		"THIN.JK": trendingBars("THIN.JK", 5, 100, 1),
	}}
	funds := &stubFundamentalRepo{snaps: map[string]*contracts.FundamentalSnapshot{}}

	analyzer := newTestAnalyzer(prices, funds)
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	_, err := analyzer.Analyze(context.Background(), "THIN.JK", date, &UniverseRatios{})
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)

	_, err = analyzer.Analyze(context.Background(), "MISSING.JK", date, &UniverseRatios{})
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestRSIScoreShape(t *testing.T) {
	assert.InDelta(t, 100, rsiScore(50), 0.001)
	assert.InDelta(t, 0, rsiScore(0), 0.001)
	assert.InDelta(t, 0, rsiScore(100), 0.001)
	assert.InDelta(t, 60, rsiScore(70), 0.001)
	assert.False(t, math.IsNaN(rsiScore(33.3)))
}
