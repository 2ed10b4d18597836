package recommend

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// Repository implements contracts.RecommendationRepository on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts the recommendation for (symbol, date). created_at is set
// by the database on first insert and preserved on rerun.
func (r *Repository) Save(ctx context.Context, rec *contracts.DailyRecommendation) error {
	query := `
		INSERT INTO analysis.daily_recommendations (
			symbol, rec_date, action, composite_score, quant_score, qualitative_score,
			risk_score, confidence, themes, summary, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (symbol, rec_date) DO UPDATE SET
			action = EXCLUDED.action,
			composite_score = EXCLUDED.composite_score,
			quant_score = EXCLUDED.quant_score,
			qualitative_score = EXCLUDED.qualitative_score,
			risk_score = EXCLUDED.risk_score,
			confidence = EXCLUDED.confidence,
			themes = EXCLUDED.themes,
			summary = EXCLUDED.summary
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Symbol, rec.Date, rec.Action, rec.CompositeScore, rec.QuantScore,
		rec.QualitativeScore, rec.RiskScore, rec.Confidence, rec.Themes, rec.Summary,
	)
	return err
}

// GetLatestBySymbol returns the newest recommendation for one symbol,
// nil when the symbol has never been scored. Absence is a legitimate
// queryable state, not an error.
func (r *Repository) GetLatestBySymbol(ctx context.Context, symbol string) (*contracts.DailyRecommendation, error) {
	query := `
		SELECT symbol, rec_date, action, composite_score, quant_score, qualitative_score,
		       risk_score, confidence, themes, summary, created_at
		FROM analysis.daily_recommendations
		WHERE symbol = $1
		ORDER BY rec_date DESC
		LIMIT 1
	`

	rec, err := scanRecommendation(r.pool.QueryRow(ctx, query, symbol))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// GetLatestForUniverse returns each symbol's newest recommendation,
// ranked by composite score descending.
func (r *Repository) GetLatestForUniverse(ctx context.Context) ([]contracts.DailyRecommendation, error) {
	query := `
		SELECT DISTINCT ON (symbol)
		       symbol, rec_date, action, composite_score, quant_score, qualitative_score,
		       risk_score, confidence, themes, summary, created_at
		FROM analysis.daily_recommendations
		ORDER BY symbol, rec_date DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []contracts.DailyRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CompositeScore > recs[j].CompositeScore
	})
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*contracts.DailyRecommendation, error) {
	var rec contracts.DailyRecommendation
	err := row.Scan(
		&rec.Symbol, &rec.Date, &rec.Action, &rec.CompositeScore, &rec.QuantScore,
		&rec.QualitativeScore, &rec.RiskScore, &rec.Confidence, &rec.Themes,
		&rec.Summary, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
