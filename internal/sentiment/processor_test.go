package sentiment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/logger"
	"github.com/alphagen/alphagen/pkg/redis"
)

type stubNewsRepo struct {
	mu        sync.Mutex
	articles  []contracts.NewsArticle
	processed map[int64]string
}

func newStubNewsRepo(articles ...contracts.NewsArticle) *stubNewsRepo {
	return &stubNewsRepo{articles: articles, processed: map[int64]string{}}
}

func (s *stubNewsRepo) Save(_ context.Context, _ *contracts.NewsArticle) (int64, error) {
	return 0, nil
}

func (s *stubNewsRepo) GetUnprocessed(_ context.Context, _ time.Time, limit int) ([]contracts.NewsArticle, error) {
	if len(s.articles) > limit {
		return s.articles[:limit], nil
	}
	return s.articles, nil
}

func (s *stubNewsRepo) MarkProcessed(_ context.Context, articleID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[articleID] = status
	return nil
}

func (s *stubNewsRepo) statusOf(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.processed[id]
	return st, ok
}

type fakeOracle struct {
	mu      sync.Mutex
	replies map[string]*contracts.SentimentReply
	errs    map[string]error
	calls   int
}

func (f *fakeOracle) Analyze(_ context.Context, _ string, symbol string) (*contracts.SentimentReply, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if reply, ok := f.replies[symbol]; ok {
		return reply, nil
	}
	return &contracts.SentimentReply{SentimentScore: 0.5, Confidence: 0.8, Relevance: 0.7}, nil
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		LookbackHours:       24,
		BatchSize:           100,
		MinCallDelay:        time.Millisecond,
		ConfidenceThreshold: 0.3,
		Workers:             2,
	}
}

func article(id int64, hints ...string) contracts.NewsArticle {
	return contracts.NewsArticle{
		ID:          id,
		Title:       "Laba bank naik",
		Text:        "Laba bersih naik 20 persen pada kuartal kedua.",
		SymbolHints: hints,
		PublishedAt: time.Now().Add(-time.Hour),
	}
}

func TestProcessBatchAcceptsResults(t *testing.T) {
	news := newStubNewsRepo(article(1, "BBCA.JK"), article(2, "TLKM.JK", "ASII.JK"))
	results := &stubResultRepo{}
	oracle := &fakeOracle{}

	p := NewProcessor(news, results, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop())
	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Articles)
	assert.Equal(t, 3, stats.Calls)
	assert.Equal(t, 3, stats.Accepted)
	assert.Len(t, results.saved, 3)

	for _, r := range results.saved {
		assert.Equal(t, "gemini-2.0-flash", r.ModelUsed)
	}

	st, ok := news.statusOf(1)
	require.True(t, ok)
	assert.Equal(t, contracts.ArticleCompleted, st)
}

func TestProcessBatchDiscardsLowConfidence(t *testing.T) {
	news := newStubNewsRepo(article(1, "GOTO.JK"))
	results := &stubResultRepo{}
	oracle := &fakeOracle{replies: map[string]*contracts.SentimentReply{
		"GOTO.JK": {SentimentScore: 0.9, Confidence: 0.1, Relevance: 0.9},
	}}

	p := NewProcessor(news, results, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop())
	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Discarded)
	assert.Zero(t, stats.Accepted)
	assert.Empty(t, results.saved)

	// discarded is still processed; it will not be retried
	st, ok := news.statusOf(1)
	require.True(t, ok)
	assert.Equal(t, contracts.ArticleCompleted, st)
}

func TestProcessBatchTransientLeavesUnprocessed(t *testing.T) {
	news := newStubNewsRepo(article(1, "BBCA.JK"))
	results := &stubResultRepo{}
	oracle := &fakeOracle{errs: map[string]error{
		"BBCA.JK": contracts.ErrOracleTransient,
	}}

	p := NewProcessor(news, results, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop())
	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TransientFailures)
	_, ok := news.statusOf(1)
	assert.False(t, ok, "transient failure must leave the article unprocessed")
}

func TestProcessBatchMalformedMarksFailed(t *testing.T) {
	news := newStubNewsRepo(article(1, "BBCA.JK"))
	results := &stubResultRepo{}
	oracle := &fakeOracle{errs: map[string]error{
		"BBCA.JK": contracts.ErrOracleMalformed,
	}}

	p := NewProcessor(news, results, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop())
	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PermanentFailures)
	st, ok := news.statusOf(1)
	require.True(t, ok)
	assert.Equal(t, contracts.ArticleFailed, st)
}

func TestProcessBatchNoHintsCompletesWithoutCalls(t *testing.T) {
	news := newStubNewsRepo(article(7))
	oracle := &fakeOracle{}

	p := NewProcessor(news, &stubResultRepo{}, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop())
	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Zero(t, stats.Calls)
	st, ok := news.statusOf(7)
	require.True(t, ok)
	assert.Equal(t, contracts.ArticleCompleted, st)
}

func TestProcessBatchQuotaDisabledRedisPassesThrough(t *testing.T) {
	news := newStubNewsRepo(article(9, "BBCA.JK"))
	results := &stubResultRepo{}
	oracle := &fakeOracle{}

	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	p := NewProcessor(news, results, oracle, testAnalysisConfig(), "gemini-2.0-flash", logger.NewNop()).
		WithQuota(redis.NewRateLimiter(client, "test"), redis.RateLimitConfig{
			Key:    "gemini",
			Limit:  10,
			Window: 24 * time.Hour,
		})

	stats, err := p.ProcessBatch(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Accepted)
	assert.Zero(t, stats.TransientFailures)
}
