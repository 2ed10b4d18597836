package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/external/gemini"
	"github.com/alphagen/alphagen/internal/marketdata"
	"github.com/alphagen/alphagen/internal/pipeline"
	"github.com/alphagen/alphagen/internal/quant"
	"github.com/alphagen/alphagen/internal/recommend"
	"github.com/alphagen/alphagen/internal/risk"
	"github.com/alphagen/alphagen/internal/sentiment"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/database"
	"github.com/alphagen/alphagen/pkg/httputil"
	"github.com/alphagen/alphagen/pkg/logger"
	"github.com/alphagen/alphagen/pkg/redis"
)

// app holds the shared wiring every command builds on: config,
// logging, database, and the repositories over it.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	prices       *marketdata.PriceRepository
	fundamentals *marketdata.FundamentalRepository
	news         *marketdata.NewsRepository
	sentiments   *sentiment.Repository
	quantScores  *quant.Repository
	riskScores   *risk.Repository
	recs         *recommend.Repository
	runs         *pipeline.RunRepository
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, cache and call budget disabled")
		cfg.Redis.Enabled = false
		redisClient, _ = redis.New(cfg)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: redisClient,

		prices:       marketdata.NewPriceRepository(db.Pool),
		fundamentals: marketdata.NewFundamentalRepository(db.Pool),
		news:         marketdata.NewNewsRepository(db.Pool),
		sentiments:   sentiment.NewRepository(db.Pool),
		quantScores:  quant.NewRepository(db.Pool),
		riskScores:   risk.NewRepository(db.Pool),
		recs:         recommend.NewRepository(db.Pool),
		runs:         pipeline.NewRunRepository(db.Pool),
	}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Redis close failed")
	}
	a.db.Close()
}

// newCollectors builds the market data and news collectors over a
// shared HTTP client.
func (a *app) newCollectors() (*marketdata.ChartCollector, *marketdata.FundamentalCollector, *marketdata.NewsCollector) {
	client := httputil.New(a.log, a.cfg.Collector.HTTPTimeout)

	charts := marketdata.NewChartCollector(client, a.cfg.Collector.ChartBaseURL, a.prices, a.log)
	fundamentals := marketdata.NewFundamentalCollector(client, a.cfg.Collector.QuoteBaseURL, a.fundamentals, a.log)
	news := marketdata.NewNewsCollector(client, a.cfg.Collector.RSSFeeds, a.news, a.log)

	return charts, fundamentals, news
}

// newOrchestrator builds the full analysis pipeline. The sentiment
// oracle needs a configured API key.
func (a *app) newOrchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	oracle, err := gemini.NewOracle(ctx, a.cfg.Oracle, a.log)
	if err != nil {
		return nil, fmt.Errorf("create sentiment oracle: %w", err)
	}

	analyzer := quant.NewAnalyzer(a.prices, a.fundamentals, a.cfg.Collector.HistoryDays, a.log)
	riskCalc := risk.NewCalculator(a.prices, a.cfg.Collector.HistoryDays, a.log)

	processor := sentiment.NewProcessor(a.news, a.sentiments, oracle, a.cfg.Analysis, oracle.Model(), a.log)
	if a.cfg.Oracle.DailyCallBudget > 0 {
		processor = processor.WithQuota(redis.NewRateLimiter(a.redis, "alphagen"), redis.RateLimitConfig{
			Key:    "gemini",
			Limit:  a.cfg.Oracle.DailyCallBudget,
			Window: 24 * time.Hour,
		})
	}

	aggregator := sentiment.NewAggregator(a.sentiments, a.log)
	synthesizer := recommend.NewSynthesizer(a.log)

	return pipeline.NewOrchestrator(
		analyzer,
		riskCalc,
		processor,
		aggregator,
		synthesizer,
		a.quantScores,
		a.riskScores,
		a.recs,
		a.runs,
		a.cfg.Analysis,
		a.log,
	), nil
}

// newCache returns the recommendation cache. It degrades to a no-op
// when redis is disabled.
func (a *app) newCache() *redis.Cache {
	return redis.NewCache(a.redis, "alphagen")
}
