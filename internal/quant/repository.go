package quant

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// Repository implements contracts.QuantRepository on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts a score keyed on (symbol, score_date). Reruns for the same
// day overwrite rather than duplicate.
func (r *Repository) Save(ctx context.Context, score *contracts.QuantitativeScore) error {
	query := `
		INSERT INTO analysis.quantitative_scores (
			symbol, score_date, valuation_score, technical_score, composite_score,
			pe_ratio, pb_ratio, rsi, ma_50, ma_200, volume_trend
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, score_date) DO UPDATE SET
			valuation_score = EXCLUDED.valuation_score,
			technical_score = EXCLUDED.technical_score,
			composite_score = EXCLUDED.composite_score,
			pe_ratio = EXCLUDED.pe_ratio,
			pb_ratio = EXCLUDED.pb_ratio,
			rsi = EXCLUDED.rsi,
			ma_50 = EXCLUDED.ma_50,
			ma_200 = EXCLUDED.ma_200,
			volume_trend = EXCLUDED.volume_trend
	`

	_, err := r.pool.Exec(ctx, query,
		score.Symbol, score.Date,
		metricPtr(score.ValuationScore), score.TechnicalScore, score.CompositeScore,
		metricPtr(score.Details.PERatio), metricPtr(score.Details.PBRatio),
		metricPtr(score.Details.RSI), metricPtr(score.Details.MA50),
		metricPtr(score.Details.MA200), metricPtr(score.Details.VolumeTrend),
	)
	return err
}

// GetBySymbolAndDate retrieves one score, nil when absent.
func (r *Repository) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.QuantitativeScore, error) {
	query := `
		SELECT symbol, score_date, valuation_score, technical_score, composite_score,
		       pe_ratio, pb_ratio, rsi, ma_50, ma_200, volume_trend
		FROM analysis.quantitative_scores
		WHERE symbol = $1 AND score_date = $2
	`

	score, err := scanScore(r.pool.QueryRow(ctx, query, symbol, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return score, err
}

// GetBySymbolAndDateRange retrieves scores in ascending date order.
func (r *Repository) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.QuantitativeScore, error) {
	query := `
		SELECT symbol, score_date, valuation_score, technical_score, composite_score,
		       pe_ratio, pb_ratio, rsi, ma_50, ma_200, volume_trend
		FROM analysis.quantitative_scores
		WHERE symbol = $1 AND score_date BETWEEN $2 AND $3
		ORDER BY score_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []contracts.QuantitativeScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*contracts.QuantitativeScore, error) {
	var s contracts.QuantitativeScore
	var valuation, pe, pb, rsi, ma50, ma200, volume *float64

	err := row.Scan(
		&s.Symbol, &s.Date, &valuation, &s.TechnicalScore, &s.CompositeScore,
		&pe, &pb, &rsi, &ma50, &ma200, &volume,
	)
	if err != nil {
		return nil, err
	}

	s.ValuationScore = metricFromPtr(valuation)
	s.Details = contracts.QuantDetails{
		PERatio:     metricFromPtr(pe),
		PBRatio:     metricFromPtr(pb),
		RSI:         metricFromPtr(rsi),
		MA50:        metricFromPtr(ma50),
		MA200:       metricFromPtr(ma200),
		VolumeTrend: metricFromPtr(volume),
	}
	return &s, nil
}

func metricPtr(m contracts.Metric) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func metricFromPtr(p *float64) contracts.Metric {
	if p == nil {
		return contracts.Metric{}
	}
	return contracts.MetricOf(*p)
}
