package contracts

import (
	"context"
	"time"
)

// Repository interfaces shared across stages. Each domain package
// provides its pgx implementation; tests substitute in-memory fakes.

// PriceRepository stores and serves daily price bars
type PriceRepository interface {
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]PriceBar, error)
	GetLatestDate(ctx context.Context, symbol string) (time.Time, error)
	SaveBatch(ctx context.Context, bars []PriceBar) error
}

// FundamentalRepository serves the most recent snapshot at or before a date
type FundamentalRepository interface {
	GetLatestBySymbol(ctx context.Context, symbol string, asOf time.Time) (*FundamentalSnapshot, error)
	Save(ctx context.Context, snap *FundamentalSnapshot) error
}

// NewsRepository stores collected articles and their processing state
type NewsRepository interface {
	Save(ctx context.Context, article *NewsArticle) (int64, error)
	GetUnprocessed(ctx context.Context, since time.Time, limit int) ([]NewsArticle, error)
	MarkProcessed(ctx context.Context, articleID int64, status string) error
}

// SentimentRepository stores accepted oracle results
type SentimentRepository interface {
	Save(ctx context.Context, result *SentimentResult) error
	GetBySymbolSince(ctx context.Context, symbol string, since time.Time) ([]SentimentResult, error)
	GetAllSince(ctx context.Context, since time.Time) ([]SentimentResult, error)
}

// QuantRepository stores quantitative scores keyed (symbol, date)
type QuantRepository interface {
	Save(ctx context.Context, score *QuantitativeScore) error
	GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*QuantitativeScore, error)
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]QuantitativeScore, error)
}

// RiskRepository stores risk scores keyed (symbol, date)
type RiskRepository interface {
	Save(ctx context.Context, score *RiskScore) error
	GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*RiskScore, error)
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]RiskScore, error)
}

// RecommendationRepository stores the terminal recommendation records
type RecommendationRepository interface {
	Save(ctx context.Context, rec *DailyRecommendation) error
	GetLatestBySymbol(ctx context.Context, symbol string) (*DailyRecommendation, error)
	GetLatestForUniverse(ctx context.Context) ([]DailyRecommendation, error)
}

// RunRepository stores pipeline run bookkeeping
type RunRepository interface {
	SaveReport(ctx context.Context, report *RunReport) error
	GetRecent(ctx context.Context, limit int) ([]RunReport, error)
}

// SentimentOracle is the capability boundary to the external AI text
// analyzer: one operation, swappable and mockable. Implementations
// distinguish transient failures (ErrOracleTransient) from permanent
// ones (ErrOracleMalformed).
type SentimentOracle interface {
	Analyze(ctx context.Context, text, symbol string) (*SentimentReply, error)
}
