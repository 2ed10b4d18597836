package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/httputil"
	"github.com/alphagen/alphagen/pkg/logger"
)

// FundamentalCollector pulls per-share fundamentals from a Yahoo-style
// quoteSummary endpoint.
type FundamentalCollector struct {
	client       *httputil.Client
	baseURL      string
	fundamentals contracts.FundamentalRepository
	logger       *logger.Logger
}

func NewFundamentalCollector(client *httputil.Client, baseURL string, fundamentals contracts.FundamentalRepository, log *logger.Logger) *FundamentalCollector {
	return &FundamentalCollector{
		client:       client,
		baseURL:      baseURL,
		fundamentals: fundamentals,
		logger:       log,
	}
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				TrailingEps *rawValue `json:"trailingEps"`
				BookValue   *rawValue `json:"bookValue"`
			} `json:"defaultKeyStatistics"`
			Price struct {
				RegularMarketPrice *rawValue `json:"regularMarketPrice"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// CollectSymbol fetches and stores the current fundamental snapshot.
// Missing EPS or book value is stored as zero; the valuation stage
// treats non-positive denominators as unavailable.
func (c *FundamentalCollector) CollectSymbol(ctx context.Context, symbol string) error {
	url := fmt.Sprintf("%s/%s?modules=defaultKeyStatistics,price", c.baseURL, symbol)

	var payload quoteSummaryResponse
	if err := c.client.GetJSON(ctx, url, &payload); err != nil {
		return fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}
	if payload.QuoteSummary.Error != nil {
		return fmt.Errorf("quote API error for %s: %s", symbol, payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return contracts.DataUnavailableError(symbol, "quote summary")
	}

	result := payload.QuoteSummary.Result[0]
	snap := &contracts.FundamentalSnapshot{
		Symbol:   symbol,
		AsOfDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if v := result.Price.RegularMarketPrice; v != nil {
		snap.Price = v.Raw
	}
	if v := result.DefaultKeyStatistics.TrailingEps; v != nil {
		snap.EarningsPerShare = v.Raw
	}
	if v := result.DefaultKeyStatistics.BookValue; v != nil {
		snap.BookValuePerShare = v.Raw
	}

	if err := c.fundamentals.Save(ctx, snap); err != nil {
		return fmt.Errorf("store fundamentals for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  snap.Price,
		"eps":    snap.EarningsPerShare,
	}).Debug("Fundamentals collected")

	return nil
}

// CollectAll fetches fundamentals for every symbol, isolating
// per-symbol failures.
func (c *FundamentalCollector) CollectAll(ctx context.Context, symbols []string) (succeeded, failed int) {
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return succeeded, failed + (len(symbols) - succeeded - failed)
		}
		if err := c.CollectSymbol(ctx, symbol); err != nil {
			failed++
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Fundamental collection failed")
			continue
		}
		succeeded++
	}
	return succeeded, failed
}
