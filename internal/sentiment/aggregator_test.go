package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

type stubResultRepo struct {
	results []contracts.SentimentResult
	saved   []contracts.SentimentResult
}

func (s *stubResultRepo) Save(_ context.Context, r *contracts.SentimentResult) error {
	s.saved = append(s.saved, *r)
	return nil
}

func (s *stubResultRepo) GetBySymbolSince(_ context.Context, symbol string, _ time.Time) ([]contracts.SentimentResult, error) {
	var out []contracts.SentimentResult
	for _, r := range s.results {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResultRepo) GetAllSince(_ context.Context, _ time.Time) ([]contracts.SentimentResult, error) {
	return s.results, nil
}

func result(symbol string, score, conf, rel float64, themes ...string) contracts.SentimentResult {
	return contracts.SentimentResult{
		ArticleID:      1,
		Symbol:         symbol,
		SentimentScore: score,
		Confidence:     conf,
		Relevance:      rel,
		Themes:         themes,
	}
}

func TestScoreSymbolWeightedMean(t *testing.T) {
	repo := &stubResultRepo{results: []contracts.SentimentResult{
		result("BBCA.JK", 0.8, 0.9, 1.0, "laba", "dividen"),
		result("BBCA.JK", -0.4, 0.5, 0.6, "laba"),
	}}
	agg := NewAggregator(repo, logger.NewNop())

	score, err := agg.ScoreSymbol(context.Background(), "BBCA.JK", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, score)

	// weights: 0.9 and 0.3; mean = (0.9*0.8 + 0.3*-0.4) / 1.2 = 0.5
	assert.InDelta(t, 0.5, score.Score, 0.001)
	assert.InDelta(t, 1.2, score.Weight, 0.001)
	assert.InDelta(t, 0.7, score.AvgConfidence, 0.001)
	assert.Equal(t, 2, score.ArticleCount)

	require.NotEmpty(t, score.Themes)
	assert.Equal(t, "laba", score.Themes[0].Theme)
	assert.Equal(t, 2, score.Themes[0].Count)
}

func TestScoreSymbolAbsentWhenNoWeight(t *testing.T) {
	t.Run("no results at all", func(t *testing.T) {
		agg := NewAggregator(&stubResultRepo{}, logger.NewNop())
		score, err := agg.ScoreSymbol(context.Background(), "TLKM.JK", time.Now())
		require.NoError(t, err)
		assert.Nil(t, score)
	})

	t.Run("results with zero weight", func(t *testing.T) {
		repo := &stubResultRepo{results: []contracts.SentimentResult{
			result("TLKM.JK", 0.9, 0, 1.0),
		}}
		agg := NewAggregator(repo, logger.NewNop())
		score, err := agg.ScoreSymbol(context.Background(), "TLKM.JK", time.Now())
		require.NoError(t, err)
		assert.Nil(t, score)
	})
}

func TestMarketSentiment(t *testing.T) {
	repo := &stubResultRepo{results: []contracts.SentimentResult{
		result("BBCA.JK", 0.6, 1, 1, "suku bunga"),
		result("TLKM.JK", -0.2, 1, 1, "suku bunga", "regulasi"),
	}}
	agg := NewAggregator(repo, logger.NewNop())

	market, err := agg.Market(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, market)

	assert.InDelta(t, 0.2, market.Score, 0.001)
	assert.Equal(t, 2, market.ArticleCount)
	assert.Equal(t, 2, market.SymbolCount)
	assert.Equal(t, "suku bunga", market.Themes[0].Theme)
}

func TestMarketSentimentEmptyWindow(t *testing.T) {
	agg := NewAggregator(&stubResultRepo{}, logger.NewNop())
	market, err := agg.Market(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, market)
}

func TestRankThemesDeterministicTies(t *testing.T) {
	ranked := rankThemes(map[string]int{"b": 2, "a": 2, "c": 5})
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Theme)
	assert.Equal(t, "a", ranked[1].Theme)
	assert.Equal(t, "b", ranked[2].Theme)
}
