package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphagen/alphagen/internal/external/gemini"
	"github.com/alphagen/alphagen/internal/sentiment"
)

// sentimentCmd represents the sentiment command
var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Analyze pending news sentiment",
	Long: `Analyze unprocessed news articles with the sentiment oracle.

Each tagged symbol in an article yields one oracle call. Results below
the confidence threshold are discarded. Transient oracle failures leave
articles unprocessed for the next batch.

Example:
  go run ./cmd/alphagen sentiment
  go run ./cmd/alphagen sentiment --hours 48`,
	RunE: runSentiment,
}

var sentimentHours int

func init() {
	rootCmd.AddCommand(sentimentCmd)

	sentimentCmd.Flags().IntVar(&sentimentHours, "hours", 0, "article window in hours (default from config)")
}

func runSentiment(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	oracle, err := gemini.NewOracle(ctx, a.cfg.Oracle, a.log)
	if err != nil {
		return fmt.Errorf("create sentiment oracle: %w", err)
	}

	hours := sentimentHours
	if hours <= 0 {
		hours = a.cfg.Analysis.LookbackHours
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	processor := sentiment.NewProcessor(a.news, a.sentiments, oracle, a.cfg.Analysis, oracle.Model(), a.log)

	stats, err := processor.ProcessBatch(ctx, since)
	if err != nil {
		return fmt.Errorf("process sentiment batch: %w", err)
	}

	fmt.Printf("Articles:           %d\n", stats.Articles)
	fmt.Printf("Oracle calls:       %d\n", stats.Calls)
	fmt.Printf("Accepted:           %d\n", stats.Accepted)
	fmt.Printf("Discarded:          %d\n", stats.Discarded)
	fmt.Printf("Transient failures: %d\n", stats.TransientFailures)
	fmt.Printf("Permanent failures: %d\n", stats.PermanentFailures)

	return nil
}
