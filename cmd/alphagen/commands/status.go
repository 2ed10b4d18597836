package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs and top recommendations",
	Long: `Show recent pipeline runs and the current ranked recommendations.

Example:
  go run ./cmd/alphagen status
  go run ./cmd/alphagen status --top 10`,
	RunE: runStatus,
}

var statusTop int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusTop, "top", 10, "number of recommendations to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	reports, err := a.runs.GetRecent(ctx, 5)
	if err != nil {
		return fmt.Errorf("load recent runs: %w", err)
	}

	fmt.Println("Recent runs:")
	if len(reports) == 0 {
		fmt.Println("  (none)")
	}
	for _, r := range reports {
		fmt.Printf("  %s  %s  ok=%d skip=%d fail=%d  %s\n",
			r.Date.Format("2006-01-02"),
			r.RunID,
			r.Succeeded,
			r.Skipped,
			r.Failed,
			r.Duration.Round(time.Millisecond),
		)
	}

	recs, err := a.recs.GetLatestForUniverse(ctx)
	if err != nil {
		return fmt.Errorf("load recommendations: %w", err)
	}

	fmt.Println("\nTop recommendations:")
	if len(recs) == 0 {
		fmt.Println("  (none)")
	}
	for i, rec := range recs {
		if i >= statusTop {
			break
		}
		qual := "-"
		if rec.HasQualitative() {
			qual = fmt.Sprintf("%+.2f", *rec.QualitativeScore)
		}
		fmt.Printf("  %-10s %-4s composite=%5.1f risk=%5.1f sentiment=%s %s\n",
			rec.Symbol,
			rec.Action,
			rec.CompositeScore,
			rec.RiskScore,
			qual,
			rec.Confidence,
		)
	}

	return nil
}
