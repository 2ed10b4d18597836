package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// RunRepository implements contracts.RunRepository on Postgres.
// Per-symbol results are stored as a JSONB detail column.
type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) SaveReport(ctx context.Context, report *contracts.RunReport) error {
	symbols, err := json.Marshal(report.Symbols)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis.pipeline_runs (
			run_id, run_date, started_at, finished_at, duration_ms,
			succeeded, failed, skipped, symbols
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		report.RunID, report.Date, report.StartedAt, report.FinishedAt,
		report.Duration.Milliseconds(), report.Succeeded, report.Failed,
		report.Skipped, symbols,
	)
	return err
}

func (r *RunRepository) GetRecent(ctx context.Context, limit int) ([]contracts.RunReport, error) {
	query := `
		SELECT run_id, run_date, started_at, finished_at, duration_ms,
		       succeeded, failed, skipped, symbols
		FROM analysis.pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []contracts.RunReport
	for rows.Next() {
		var report contracts.RunReport
		var durationMS int64
		var symbols []byte
		if err := rows.Scan(
			&report.RunID, &report.Date, &report.StartedAt, &report.FinishedAt,
			&durationMS, &report.Succeeded, &report.Failed, &report.Skipped, &symbols,
		); err != nil {
			return nil, err
		}
		report.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal(symbols, &report.Symbols); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
