package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// NewsRepository implements contracts.NewsRepository on Postgres.
// Articles are deduplicated on URL.
type NewsRepository struct {
	pool *pgxpool.Pool
}

func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

// Save inserts an article, returning its ID. A duplicate URL returns 0
// without error so collectors can count genuinely new articles.
func (r *NewsRepository) Save(ctx context.Context, article *contracts.NewsArticle) (int64, error) {
	query := `
		INSERT INTO news.articles (title, url, source, symbol_hints, published_at, article_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		article.Title, article.URL, article.Source, article.SymbolHints,
		article.PublishedAt, article.Text,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// ON CONFLICT DO NOTHING yields no row for duplicates
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetUnprocessed returns articles published since the cutoff that the
// sentiment stage has not yet handled, newest first.
func (r *NewsRepository) GetUnprocessed(ctx context.Context, since time.Time, limit int) ([]contracts.NewsArticle, error) {
	query := `
		SELECT id, title, url, source, symbol_hints, published_at, article_text, processed_at, COALESCE(status, '')
		FROM news.articles
		WHERE published_at >= $1 AND processed_at IS NULL
		ORDER BY published_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []contracts.NewsArticle
	for rows.Next() {
		var a contracts.NewsArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.SymbolHints,
			&a.PublishedAt, &a.Text, &a.ProcessedAt, &a.Status); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *NewsRepository) MarkProcessed(ctx context.Context, articleID int64, status string) error {
	query := `UPDATE news.articles SET processed_at = NOW(), status = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, articleID, status)
	return err
}
