package sentiment

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/logger"
)

// Aggregator folds individual sentiment results into per-symbol and
// market-wide qualitative scores.
type Aggregator struct {
	results contracts.SentimentRepository
	logger  *logger.Logger
}

func NewAggregator(results contracts.SentimentRepository, log *logger.Logger) *Aggregator {
	return &Aggregator{results: results, logger: log}
}

// ScoreSymbol aggregates a symbol's sentiment over the lookback window
// as a weighted mean, weight = confidence * relevance. Returns nil when
// no result carries weight: "no data" is absence, never a zero score.
func (a *Aggregator) ScoreSymbol(ctx context.Context, symbol string, since time.Time) (*contracts.QualitativeScore, error) {
	results, err := a.results.GetBySymbolSince(ctx, symbol, since)
	if err != nil {
		return nil, err
	}
	return aggregate(symbol, results), nil
}

// MarketSentiment is the weighted sentiment across the whole universe.
type MarketSentiment struct {
	Score        float64                `json:"score"`
	ArticleCount int                    `json:"article_count"`
	SymbolCount  int                    `json:"symbol_count"`
	Themes       []contracts.ThemeCount `json:"themes"`
	Since        time.Time              `json:"since"`
}

// Market aggregates every result in the window regardless of symbol.
// Returns nil when the window is empty.
func (a *Aggregator) Market(ctx context.Context, since time.Time) (*MarketSentiment, error) {
	results, err := a.results.GetAllSince(ctx, since)
	if err != nil {
		return nil, err
	}

	agg := aggregate("", results)
	if agg == nil {
		return nil, nil
	}

	symbols := map[string]struct{}{}
	for _, r := range results {
		symbols[r.Symbol] = struct{}{}
	}

	return &MarketSentiment{
		Score:        agg.Score,
		ArticleCount: agg.ArticleCount,
		SymbolCount:  len(symbols),
		Themes:       agg.Themes,
		Since:        since,
	}, nil
}

func aggregate(symbol string, results []contracts.SentimentResult) *contracts.QualitativeScore {
	var weightedSum, totalWeight, confidenceSum float64
	themes := map[string]int{}
	count := 0

	for i := range results {
		r := &results[i]
		w := r.Weight()
		if w <= 0 {
			continue
		}
		weightedSum += w * r.SentimentScore
		totalWeight += w
		confidenceSum += r.Confidence
		count++
		for _, theme := range r.Themes {
			theme = strings.ToLower(strings.TrimSpace(theme))
			if theme != "" {
				themes[theme]++
			}
		}
	}

	if totalWeight == 0 {
		return nil
	}

	return &contracts.QualitativeScore{
		Symbol:        symbol,
		Score:         weightedSum / totalWeight,
		Weight:        totalWeight,
		AvgConfidence: confidenceSum / float64(count),
		ArticleCount:  count,
		Themes:        rankThemes(themes),
	}
}

// rankThemes orders themes by frequency, alphabetical within ties so
// the ranking is deterministic.
func rankThemes(counts map[string]int) []contracts.ThemeCount {
	if len(counts) == 0 {
		return nil
	}
	ranked := make([]contracts.ThemeCount, 0, len(counts))
	for theme, count := range counts {
		ranked = append(ranked, contracts.ThemeCount{Theme: theme, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Theme < ranked[j].Theme
	})
	return ranked
}
