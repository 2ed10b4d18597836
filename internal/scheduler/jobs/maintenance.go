package jobs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/pkg/logger"
)

// retentionDays bounds how long raw news and run bookkeeping are kept.
// Scores and recommendations are never deleted.
const retentionDays = 90

// MaintenanceJob prunes aged operational data weekly.
type MaintenanceJob struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewMaintenanceJob(pool *pgxpool.Pool, log *logger.Logger) *MaintenanceJob {
	return &MaintenanceJob{pool: pool, logger: log}
}

func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Schedule: Sunday 02:00 UTC.
func (j *MaintenanceJob) Schedule() string {
	return "0 0 2 * * 0"
}

func (j *MaintenanceJob) Run(ctx context.Context) error {
	prunes := []struct {
		name  string
		query string
	}{
		{"news_articles", fmt.Sprintf(`DELETE FROM news.articles WHERE published_at < NOW() - INTERVAL '%d days'`, retentionDays)},
		{"pipeline_runs", fmt.Sprintf(`DELETE FROM analysis.pipeline_runs WHERE started_at < NOW() - INTERVAL '%d days'`, retentionDays)},
	}

	for _, p := range prunes {
		tag, err := j.pool.Exec(ctx, p.query)
		if err != nil {
			return fmt.Errorf("prune %s: %w", p.name, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"table":   p.name,
			"deleted": tag.RowsAffected(),
		}).Info("Aged rows pruned")
	}

	return nil
}
