package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphagen/alphagen/internal/universe"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect market data and news",
	Long: `Collect market data and news for the LQ45 universe.

Collection types:
  all           - prices, fundamentals, and news
  prices        - daily OHLCV bars
  fundamentals  - EPS, book value, and market price snapshots
  news          - RSS articles tagged with universe symbols

Example:
  go run ./cmd/alphagen collect --type all
  go run ./cmd/alphagen collect --type prices --days 365
  go run ./cmd/alphagen collect --type news --hours 48`,
	RunE: runCollect,
}

var (
	collectType  string
	collectDays  int
	collectHours int
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectType, "type", "all", "collection type (all|prices|fundamentals|news)")
	collectCmd.Flags().IntVar(&collectDays, "days", 0, "price history depth in days (default from config)")
	collectCmd.Flags().IntVar(&collectHours, "hours", 24, "news window in hours")
}

func runCollect(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	charts, fundamentals, news := a.newCollectors()
	symbols := universe.Symbols()

	days := collectDays
	if days <= 0 {
		days = a.cfg.Collector.HistoryDays
	}

	switch collectType {
	case "all":
		ok, failed := charts.CollectAll(ctx, symbols, days)
		fmt.Printf("Prices: %d collected, %d failed\n", ok, failed)

		ok, failed = fundamentals.CollectAll(ctx, symbols)
		fmt.Printf("Fundamentals: %d collected, %d failed\n", ok, failed)

		stats, err := news.Collect(ctx, time.Now().UTC().Add(-time.Duration(collectHours)*time.Hour))
		if err != nil {
			return fmt.Errorf("collect news: %w", err)
		}
		fmt.Printf("News: %s\n", stats)

	case "prices":
		ok, failed := charts.CollectAll(ctx, symbols, days)
		fmt.Printf("Prices: %d collected, %d failed\n", ok, failed)

	case "fundamentals":
		ok, failed := fundamentals.CollectAll(ctx, symbols)
		fmt.Printf("Fundamentals: %d collected, %d failed\n", ok, failed)

	case "news":
		stats, err := news.Collect(ctx, time.Now().UTC().Add(-time.Duration(collectHours)*time.Hour))
		if err != nil {
			return fmt.Errorf("collect news: %w", err)
		}
		fmt.Printf("News: %s\n", stats)

	default:
		return fmt.Errorf("invalid collection type %q (valid: all, prices, fundamentals, news)", collectType)
	}

	return nil
}
