package sentiment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// Repository implements contracts.SentimentRepository on Postgres.
// Results accumulate; they are never deleted, only aggregated.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts on (article_id, symbol) so a rerun over the same article
// does not duplicate rows.
func (r *Repository) Save(ctx context.Context, result *contracts.SentimentResult) error {
	query := `
		INSERT INTO analysis.sentiment_results (
			article_id, symbol, sentiment_score, confidence, relevance,
			themes, summary, model_used, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (article_id, symbol) DO UPDATE SET
			sentiment_score = EXCLUDED.sentiment_score,
			confidence = EXCLUDED.confidence,
			relevance = EXCLUDED.relevance,
			themes = EXCLUDED.themes,
			summary = EXCLUDED.summary,
			model_used = EXCLUDED.model_used
	`

	_, err := r.pool.Exec(ctx, query,
		result.ArticleID, result.Symbol, result.SentimentScore, result.Confidence,
		result.Relevance, result.Themes, result.Summary, result.ModelUsed, result.CreatedAt,
	)
	return err
}

func (r *Repository) GetBySymbolSince(ctx context.Context, symbol string, since time.Time) ([]contracts.SentimentResult, error) {
	query := `
		SELECT article_id, symbol, sentiment_score, confidence, relevance,
		       themes, summary, model_used, created_at
		FROM analysis.sentiment_results
		WHERE symbol = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, symbol, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

func (r *Repository) GetAllSince(ctx context.Context, since time.Time) ([]contracts.SentimentResult, error) {
	query := `
		SELECT article_id, symbol, sentiment_score, confidence, relevance,
		       themes, summary, model_used, created_at
		FROM analysis.sentiment_results
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows pgxRows) ([]contracts.SentimentResult, error) {
	var results []contracts.SentimentResult
	for rows.Next() {
		var s contracts.SentimentResult
		if err := rows.Scan(
			&s.ArticleID, &s.Symbol, &s.SentimentScore, &s.Confidence, &s.Relevance,
			&s.Themes, &s.Summary, &s.ModelUsed, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
