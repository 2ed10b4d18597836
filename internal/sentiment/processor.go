package sentiment

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/logger"
	"github.com/alphagen/alphagen/pkg/redis"
)

// BatchStats tallies one sentiment batch run.
type BatchStats struct {
	Articles          int
	Calls             int
	Accepted          int
	Discarded         int
	TransientFailures int
	PermanentFailures int
}

// Processor drains unprocessed news articles through the sentiment
// oracle. Oracle calls share one rate limiter across all workers so the
// aggregate call rate respects the provider limit regardless of
// concurrency.
type Processor struct {
	news      contracts.NewsRepository
	results   contracts.SentimentRepository
	oracle    contracts.SentimentOracle
	limiter   *rate.Limiter
	model     string
	workers   int
	batchSize int
	threshold float64
	quota     *oracleQuota
	logger    *logger.Logger

	mu    sync.Mutex
	stats BatchStats
}

// oracleQuota is a call budget shared across processes via Redis. The
// in-process limiter paces calls; the quota caps their total.
type oracleQuota struct {
	limiter *redis.RateLimiter
	cfg     redis.RateLimitConfig
}

func NewProcessor(
	news contracts.NewsRepository,
	results contracts.SentimentRepository,
	oracle contracts.SentimentOracle,
	cfg config.AnalysisConfig,
	model string,
	log *logger.Logger,
) *Processor {
	return &Processor{
		news:      news,
		results:   results,
		oracle:    oracle,
		limiter:   rate.NewLimiter(rate.Every(cfg.MinCallDelay), 1),
		model:     model,
		workers:   cfg.Workers,
		batchSize: cfg.BatchSize,
		threshold: cfg.ConfidenceThreshold,
		logger:    log,
	}
}

// WithQuota caps total oracle calls across processes. Exhaustion counts
// as a transient failure so affected articles stay unprocessed and the
// next batch retries them.
func (p *Processor) WithQuota(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Processor {
	p.quota = &oracleQuota{limiter: limiter, cfg: cfg}
	return p
}

// ProcessBatch analyzes one batch of unprocessed articles published
// since the given time. Per-article failures never abort the batch.
func (p *Processor) ProcessBatch(ctx context.Context, since time.Time) (*BatchStats, error) {
	articles, err := p.news.GetUnprocessed(ctx, since, p.batchSize)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.stats = BatchStats{Articles: len(articles)}
	p.mu.Unlock()

	if len(articles) == 0 {
		return p.snapshot(), nil
	}

	jobs := make(chan contracts.NewsArticle)
	var wg sync.WaitGroup

	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for article := range jobs {
				p.processArticle(ctx, article)
			}
		}()
	}

	for _, article := range articles {
		select {
		case jobs <- article:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return p.snapshot(), ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	stats := p.snapshot()
	p.logger.WithFields(map[string]interface{}{
		"articles":  stats.Articles,
		"calls":     stats.Calls,
		"accepted":  stats.Accepted,
		"discarded": stats.Discarded,
		"transient": stats.TransientFailures,
		"permanent": stats.PermanentFailures,
	}).Info("Sentiment batch completed")

	return stats, nil
}

// processArticle runs the oracle once per hinted symbol. A transient
// failure on any call leaves the article unprocessed so the next run
// retries it; malformed replies mark it failed permanently.
func (p *Processor) processArticle(ctx context.Context, article contracts.NewsArticle) {
	if len(article.SymbolHints) == 0 {
		p.markProcessed(ctx, article.ID, contracts.ArticleCompleted)
		return
	}

	sawTransient := false
	sawPermanent := false

	for _, symbol := range article.SymbolHints {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		if p.quota != nil {
			allowed, _, err := p.quota.limiter.Allow(ctx, p.quota.cfg)
			if err != nil {
				p.logger.WithError(err).Warn("Oracle quota check failed, proceeding")
			} else if !allowed {
				sawTransient = true
				p.count(func(s *BatchStats) { s.TransientFailures++ })
				p.logger.WithField("article_id", article.ID).Warn("Oracle call budget exhausted, deferring article")
				continue
			}
		}

		reply, err := p.oracle.Analyze(ctx, article.Body(), symbol)
		p.count(func(s *BatchStats) { s.Calls++ })

		if err != nil {
			switch {
			case contracts.IsTransient(err):
				sawTransient = true
				p.count(func(s *BatchStats) { s.TransientFailures++ })
				p.logger.WithError(err).WithFields(map[string]interface{}{
					"article_id": article.ID,
					"symbol":     symbol,
				}).Warn("Sentiment call failed, will retry next run")
			case contracts.IsPermanentOracleFailure(err):
				sawPermanent = true
				p.count(func(s *BatchStats) { s.PermanentFailures++ })
				p.logger.WithError(err).WithFields(map[string]interface{}{
					"article_id": article.ID,
					"symbol":     symbol,
				}).Error("Sentiment reply unusable")
			default:
				sawTransient = true
				p.count(func(s *BatchStats) { s.TransientFailures++ })
				p.logger.WithError(err).WithField("article_id", article.ID).Warn("Sentiment call failed")
			}
			continue
		}

		if reply.Confidence < p.threshold {
			p.count(func(s *BatchStats) { s.Discarded++ })
			continue
		}

		result := &contracts.SentimentResult{
			ArticleID:      article.ID,
			Symbol:         symbol,
			SentimentScore: reply.SentimentScore,
			Confidence:     reply.Confidence,
			Relevance:      reply.Relevance,
			Themes:         reply.Themes,
			Summary:        reply.Summary,
			ModelUsed:      p.model,
			CreatedAt:      time.Now().UTC(),
		}
		if err := p.results.Save(ctx, result); err != nil {
			p.logger.WithError(err).WithField("article_id", article.ID).Error("Failed to save sentiment result")
			sawTransient = true
			continue
		}
		p.count(func(s *BatchStats) { s.Accepted++ })
	}

	switch {
	case sawTransient:
		// leave unprocessed for retry
	case sawPermanent:
		p.markProcessed(ctx, article.ID, contracts.ArticleFailed)
	default:
		p.markProcessed(ctx, article.ID, contracts.ArticleCompleted)
	}
}

func (p *Processor) markProcessed(ctx context.Context, articleID int64, status string) {
	if err := p.news.MarkProcessed(ctx, articleID, status); err != nil {
		p.logger.WithError(err).WithField("article_id", articleID).Error("Failed to mark article processed")
	}
}

func (p *Processor) count(fn func(*BatchStats)) {
	p.mu.Lock()
	fn(&p.stats)
	p.mu.Unlock()
}

func (p *Processor) snapshot() *BatchStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	return &s
}
