package risk

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// Repository implements contracts.RiskRepository on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Save(ctx context.Context, score *contracts.RiskScore) error {
	query := `
		INSERT INTO analysis.risk_scores (
			symbol, score_date, volatility_30d, max_drawdown, value_at_risk, risk_score, risk_level
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, score_date) DO UPDATE SET
			volatility_30d = EXCLUDED.volatility_30d,
			max_drawdown = EXCLUDED.max_drawdown,
			value_at_risk = EXCLUDED.value_at_risk,
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level
	`

	_, err := r.pool.Exec(ctx, query,
		score.Symbol, score.Date,
		score.Volatility30D, score.MaxDrawdown, score.ValueAtRisk,
		score.Score, score.Level,
	)
	return err
}

func (r *Repository) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.RiskScore, error) {
	query := `
		SELECT symbol, score_date, volatility_30d, max_drawdown, value_at_risk, risk_score, risk_level
		FROM analysis.risk_scores
		WHERE symbol = $1 AND score_date = $2
	`

	var s contracts.RiskScore
	err := r.pool.QueryRow(ctx, query, symbol, date).Scan(
		&s.Symbol, &s.Date, &s.Volatility30D, &s.MaxDrawdown, &s.ValueAtRisk, &s.Score, &s.Level,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.RiskScore, error) {
	query := `
		SELECT symbol, score_date, volatility_30d, max_drawdown, value_at_risk, risk_score, risk_level
		FROM analysis.risk_scores
		WHERE symbol = $1 AND score_date BETWEEN $2 AND $3
		ORDER BY score_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []contracts.RiskScore
	for rows.Next() {
		var s contracts.RiskScore
		if err := rows.Scan(&s.Symbol, &s.Date, &s.Volatility30D, &s.MaxDrawdown, &s.ValueAtRisk, &s.Score, &s.Level); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
