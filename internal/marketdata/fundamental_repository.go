package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphagen/alphagen/internal/contracts"
)

// FundamentalRepository implements contracts.FundamentalRepository on
// Postgres. Snapshots are sparse; reads return the newest at or before
// the requested date.
type FundamentalRepository struct {
	pool *pgxpool.Pool
}

func NewFundamentalRepository(pool *pgxpool.Pool) *FundamentalRepository {
	return &FundamentalRepository{pool: pool}
}

// GetLatestBySymbol returns nil without error when the symbol has no
// snapshot yet; the valuation stage treats that as unavailable.
func (r *FundamentalRepository) GetLatestBySymbol(ctx context.Context, symbol string, asOf time.Time) (*contracts.FundamentalSnapshot, error) {
	query := `
		SELECT symbol, as_of_date, price, earnings_per_share, book_value_per_share
		FROM market.fundamentals
		WHERE symbol = $1 AND as_of_date <= $2
		ORDER BY as_of_date DESC
		LIMIT 1
	`

	var s contracts.FundamentalSnapshot
	err := r.pool.QueryRow(ctx, query, symbol, asOf).Scan(
		&s.Symbol, &s.AsOfDate, &s.Price, &s.EarningsPerShare, &s.BookValuePerShare,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *FundamentalRepository) Save(ctx context.Context, snap *contracts.FundamentalSnapshot) error {
	query := `
		INSERT INTO market.fundamentals (symbol, as_of_date, price, earnings_per_share, book_value_per_share)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, as_of_date) DO UPDATE SET
			price = EXCLUDED.price,
			earnings_per_share = EXCLUDED.earnings_per_share,
			book_value_per_share = EXCLUDED.book_value_per_share
	`

	_, err := r.pool.Exec(ctx, query,
		snap.Symbol, snap.AsOfDate, snap.Price, snap.EarningsPerShare, snap.BookValuePerShare,
	)
	return err
}
