package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/sentiment"
	"github.com/alphagen/alphagen/pkg/logger"
)

type stubRecRepo struct {
	latest   []contracts.DailyRecommendation
	bySymbol map[string]*contracts.DailyRecommendation
	queried  []string
}

func (s *stubRecRepo) Save(ctx context.Context, rec *contracts.DailyRecommendation) error {
	return nil
}

func (s *stubRecRepo) GetLatestBySymbol(ctx context.Context, symbol string) (*contracts.DailyRecommendation, error) {
	s.queried = append(s.queried, symbol)
	return s.bySymbol[symbol], nil
}

func (s *stubRecRepo) GetLatestForUniverse(ctx context.Context) ([]contracts.DailyRecommendation, error) {
	return s.latest, nil
}

type stubQuantRepo struct {
	scores []contracts.QuantitativeScore
}

func (s *stubQuantRepo) Save(ctx context.Context, score *contracts.QuantitativeScore) error {
	return nil
}

func (s *stubQuantRepo) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.QuantitativeScore, error) {
	return nil, nil
}

func (s *stubQuantRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.QuantitativeScore, error) {
	return s.scores, nil
}

type stubRiskRepo struct {
	scores []contracts.RiskScore
}

func (s *stubRiskRepo) Save(ctx context.Context, score *contracts.RiskScore) error {
	return nil
}

func (s *stubRiskRepo) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.RiskScore, error) {
	return nil, nil
}

func (s *stubRiskRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.RiskScore, error) {
	return s.scores, nil
}

type stubSentimentRepo struct {
	results []contracts.SentimentResult
}

func (s *stubSentimentRepo) Save(ctx context.Context, result *contracts.SentimentResult) error {
	return nil
}

func (s *stubSentimentRepo) GetBySymbolSince(ctx context.Context, symbol string, since time.Time) ([]contracts.SentimentResult, error) {
	var out []contracts.SentimentResult
	for _, r := range s.results {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubSentimentRepo) GetAllSince(ctx context.Context, since time.Time) ([]contracts.SentimentResult, error) {
	return s.results, nil
}

type stubRunRepo struct {
	reports []contracts.RunReport
}

func (s *stubRunRepo) SaveReport(ctx context.Context, report *contracts.RunReport) error {
	return nil
}

func (s *stubRunRepo) GetRecent(ctx context.Context, limit int) ([]contracts.RunReport, error) {
	if len(s.reports) > limit {
		return s.reports[:limit], nil
	}
	return s.reports, nil
}

type stubTrigger struct {
	mu      sync.Mutex
	calls   int
	symbols []string
	block   chan struct{} // when set, Run waits until closed
}

func (s *stubTrigger) Run(ctx context.Context, date time.Time, symbols []string) (*contracts.RunReport, error) {
	s.mu.Lock()
	s.calls++
	s.symbols = symbols
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return &contracts.RunReport{RunID: "test-run", Date: date}, nil
}

func TestGetLatestRanksRecommendations(t *testing.T) {
	repo := &stubRecRepo{
		latest: []contracts.DailyRecommendation{
			{Symbol: "BBCA.JK", Action: "BUY", CompositeScore: 85},
			{Symbol: "TLKM.JK", Action: "HOLD", CompositeScore: 55},
		},
	}
	h := NewRecommendationHandler(repo, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/latest", nil)
	rec := httptest.NewRecorder()
	h.GetLatest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "BBCA.JK", resp.Recommendations[0].Symbol)
}

func TestGetBySymbolNormalizesAndReturnsRecord(t *testing.T) {
	repo := &stubRecRepo{
		bySymbol: map[string]*contracts.DailyRecommendation{
			"BBCA.JK": {Symbol: "BBCA.JK", Action: "BUY", CompositeScore: 85},
		},
	}
	h := NewRecommendationHandler(repo, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/bbca", nil)
	req = mux.SetURLVars(req, map[string]string{"symbol": "bbca"})
	rec := httptest.NewRecorder()
	h.GetBySymbol(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"BBCA.JK"}, repo.queried)

	var resp contracts.DailyRecommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BUY", resp.Action)
}

func TestGetBySymbolAbsenceIs404(t *testing.T) {
	h := NewRecommendationHandler(&stubRecRepo{}, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/UNVR", nil)
	req = mux.SetURLVars(req, map[string]string{"symbol": "UNVR"})
	rec := httptest.NewRecorder()
	h.GetBySymbol(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestGetHistoryReturnsBothSeries(t *testing.T) {
	quant := &stubQuantRepo{scores: []contracts.QuantitativeScore{
		{Symbol: "BBCA.JK", TechnicalScore: 60, CompositeScore: 62},
	}}
	risk := &stubRiskRepo{scores: []contracts.RiskScore{
		{Symbol: "BBCA.JK", Score: 40, Level: contracts.RiskMedium},
	}}
	h := NewScoreHandler(quant, risk, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/scores/BBCA.JK?from=2026-08-01&to=2026-08-28", nil)
	req = mux.SetURLVars(req, map[string]string{"symbol": "BBCA.JK"})
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BBCA.JK", resp.Symbol)
	assert.Len(t, resp.Quantitative, 1)
	assert.Len(t, resp.Risk, 1)
}

func TestGetHistoryRejectsBadDates(t *testing.T) {
	h := NewScoreHandler(&stubQuantRepo{}, &stubRiskRepo{}, logger.NewNop())

	cases := []string{
		"/api/scores/BBCA.JK?from=yesterday",
		"/api/scores/BBCA.JK?to=28-08-2026",
		"/api/scores/BBCA.JK?from=2026-08-28&to=2026-08-01",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req = mux.SetURLVars(req, map[string]string{"symbol": "BBCA.JK"})
		rec := httptest.NewRecorder()
		h.GetHistory(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestGetMarketSentiment(t *testing.T) {
	results := &stubSentimentRepo{results: []contracts.SentimentResult{
		{Symbol: "BBCA.JK", SentimentScore: 0.8, Confidence: 0.9, Relevance: 1.0, Themes: []string{"earnings"}},
		{Symbol: "TLKM.JK", SentimentScore: -0.2, Confidence: 0.5, Relevance: 0.8},
	}}
	agg := sentiment.NewAggregator(results, logger.NewNop())
	h := NewSentimentHandler(agg, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/market?hours=48", nil)
	rec := httptest.NewRecorder()
	h.GetMarket(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp MarketSentimentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Equal(t, 48, resp.Hours)
	require.NotNil(t, resp.Sentiment)
	assert.Equal(t, 2, resp.Sentiment.ArticleCount)
}

func TestGetMarketSentimentAbsence(t *testing.T) {
	agg := sentiment.NewAggregator(&stubSentimentRepo{}, logger.NewNop())
	h := NewSentimentHandler(agg, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/market", nil)
	rec := httptest.NewRecorder()
	h.GetMarket(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp MarketSentimentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.Nil(t, resp.Sentiment)
}

func TestGetRunsAppliesLimit(t *testing.T) {
	runs := &stubRunRepo{reports: []contracts.RunReport{
		{RunID: "a"}, {RunID: "b"}, {RunID: "c"},
	}}
	h := NewPipelineHandler(runs, &stubTrigger{}, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/pipeline/runs?limit=2", nil)
	rec := httptest.NewRecorder()
	h.GetRuns(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int                   `json:"count"`
		Runs  []contracts.RunReport `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestTriggerRunDefaultsToUniverse(t *testing.T) {
	trigger := &stubTrigger{}
	h := NewPipelineHandler(&stubRunRepo{}, trigger, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	// The run happens in the background; wait for it to register.
	assert.Eventually(t, func() bool {
		trigger.mu.Lock()
		defer trigger.mu.Unlock()
		return trigger.calls == 1 && len(trigger.symbols) == 45
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerRunRejectsConcurrent(t *testing.T) {
	block := make(chan struct{})
	trigger := &stubTrigger{block: block}
	h := NewPipelineHandler(&stubRunRepo{}, trigger, logger.NewNop())

	body := `{"date":"2026-08-28","symbols":["bbca"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	second := httptest.NewRecorder()
	h.TriggerRun(second, httptest.NewRequest(http.MethodPost, "/api/pipeline/run", strings.NewReader("")))
	assert.Equal(t, http.StatusConflict, second.Code)

	close(block)

	assert.Eventually(t, func() bool {
		trigger.mu.Lock()
		defer trigger.mu.Unlock()
		return trigger.calls == 1 && len(trigger.symbols) == 1 && trigger.symbols[0] == "BBCA.JK"
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerRunRejectsBadDate(t *testing.T) {
	h := NewPipelineHandler(&stubRunRepo{}, &stubTrigger{}, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run", strings.NewReader(`{"date":"28 Aug"}`))
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
