package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphagen/alphagen/internal/universe"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the analysis pipeline once",
	Long: `Run the full analysis pipeline for one date.

Scores every symbol on valuation, technicals, and risk, analyzes
pending news sentiment, and persists ranked recommendations.

Example:
  go run ./cmd/alphagen run
  go run ./cmd/alphagen run --date 2026-08-28
  go run ./cmd/alphagen run --symbols BBCA,TLKM`,
	RunE: runPipeline,
}

var (
	runDate    string
	runSymbols []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "analysis date YYYY-MM-DD (default today)")
	runCmd.Flags().StringSliceVar(&runSymbols, "symbols", nil, "symbols to analyze (default full universe)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if runDate != "" {
		parsed, err := time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", runDate)
		}
		date = parsed
	}

	symbols := universe.Symbols()
	if len(runSymbols) > 0 {
		symbols = make([]string, len(runSymbols))
		for i, s := range runSymbols {
			symbols[i] = universe.FormatSymbol(s)
		}
	}

	orchestrator, err := a.newOrchestrator(ctx)
	if err != nil {
		return err
	}

	report, err := orchestrator.Run(ctx, date, symbols)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Run %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	fmt.Printf("  succeeded: %d\n", report.Succeeded)
	fmt.Printf("  skipped:   %d\n", report.Skipped)
	fmt.Printf("  failed:    %d\n", report.Failed)

	for _, result := range report.Symbols {
		if result.Failed() {
			fmt.Printf("  %s failed: %s\n", result.Symbol, result.Error)
		}
	}

	return nil
}
