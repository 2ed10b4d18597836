package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphagen",
	Short: "AlphaGen - LQ45 daily market analysis pipeline",
	Long: `AlphaGen CLI

Daily market and news analysis over the Indonesian LQ45 universe.
Collects prices, fundamentals, and news, scores every symbol on
valuation, technicals, sentiment, and risk, and produces ranked
BUY/HOLD/SELL recommendations.

Usage:
  go run ./cmd/alphagen [command]

Examples:
  go run ./cmd/alphagen api
  go run ./cmd/alphagen collect --type all
  go run ./cmd/alphagen run --date 2026-08-28
  go run ./cmd/alphagen status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
