package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/marketdata"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/logger"
)

// CollectionJob pulls prices, fundamentals and news for the universe
// after the Jakarta close, before the analysis job runs.
type CollectionJob struct {
	charts       *marketdata.ChartCollector
	fundamentals *marketdata.FundamentalCollector
	news         *marketdata.NewsCollector
	cfg          config.CollectorConfig
	logger       *logger.Logger
}

func NewCollectionJob(
	charts *marketdata.ChartCollector,
	fundamentals *marketdata.FundamentalCollector,
	news *marketdata.NewsCollector,
	cfg config.CollectorConfig,
	log *logger.Logger,
) *CollectionJob {
	return &CollectionJob{
		charts:       charts,
		fundamentals: fundamentals,
		news:         news,
		cfg:          cfg,
		logger:       log,
	}
}

func (j *CollectionJob) Name() string {
	return "data_collection"
}

// Schedule: 09:30 UTC weekdays, 16:30 WIB, right after the IDX close.
func (j *CollectionJob) Schedule() string {
	return "0 30 9 * * 1-5"
}

func (j *CollectionJob) Run(ctx context.Context) error {
	symbols := universe.Symbols()

	j.logger.WithField("symbols", len(symbols)).Info("Starting scheduled data collection")

	succeeded, failed := j.charts.CollectAll(ctx, symbols, j.cfg.HistoryDays)
	if succeeded == 0 {
		return fmt.Errorf("price collection failed for all %d symbols", failed)
	}

	if _, failed := j.fundamentals.CollectAll(ctx, symbols); failed > 0 {
		j.logger.WithField("failed", failed).Warn("Some fundamental snapshots missing")
	}

	since := time.Now().Add(-24 * time.Hour)
	if _, err := j.news.Collect(ctx, since); err != nil {
		return fmt.Errorf("news collection: %w", err)
	}

	return nil
}
