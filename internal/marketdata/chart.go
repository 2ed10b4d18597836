package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/httputil"
	"github.com/alphagen/alphagen/pkg/logger"
)

// ChartCollector pulls daily OHLCV history from a Yahoo-style chart
// endpoint and stores it as price bars.
type ChartCollector struct {
	client  *httputil.Client
	baseURL string
	prices  contracts.PriceRepository
	logger  *logger.Logger
}

func NewChartCollector(client *httputil.Client, baseURL string, prices contracts.PriceRepository, log *logger.Logger) *ChartCollector {
	return &ChartCollector{
		client:  client,
		baseURL: baseURL,
		prices:  prices,
		logger:  log,
	}
}

// chartResponse mirrors the v8 chart payload. Quote arrays use pointers
// because the API emits null for halted or missing sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// CollectSymbol fetches up to rangeDays of daily bars for one symbol
// and upserts them. Returns the number of bars stored.
func (c *ChartCollector) CollectSymbol(ctx context.Context, symbol string, rangeDays int) (int, error) {
	url := fmt.Sprintf("%s/%s?range=%s&interval=1d", c.baseURL, symbol, rangeParam(rangeDays))

	var payload chartResponse
	if err := c.client.GetJSON(ctx, url, &payload); err != nil {
		return 0, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return 0, fmt.Errorf("chart API error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return 0, contracts.DataUnavailableError(symbol, "chart result")
	}

	bars := parseBars(symbol, &payload)
	if len(bars) == 0 {
		return 0, contracts.DataUnavailableError(symbol, "usable price bars")
	}

	if err := c.prices.SaveBatch(ctx, bars); err != nil {
		return 0, fmt.Errorf("store bars for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("Price history collected")

	return len(bars), nil
}

// CollectAll fetches history for every symbol. Per-symbol failures are
// logged and counted, never aborting the remaining symbols.
func (c *ChartCollector) CollectAll(ctx context.Context, symbols []string, rangeDays int) (succeeded, failed int) {
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return succeeded, failed + (len(symbols) - succeeded - failed)
		}
		if _, err := c.CollectSymbol(ctx, symbol, rangeDays); err != nil {
			failed++
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Price collection failed")
			continue
		}
		succeeded++
	}

	c.logger.WithFields(map[string]interface{}{
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Market data collection completed")

	return succeeded, failed
}

func parseBars(symbol string, payload *chartResponse) []contracts.PriceBar {
	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := contracts.PriceBar{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close:  *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars
}

func rangeParam(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 93:
		return "3mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	default:
		return "2y"
	}
}
