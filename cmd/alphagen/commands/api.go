package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphagen/alphagen/internal/api"
	"github.com/alphagen/alphagen/internal/api/handlers"
	"github.com/alphagen/alphagen/internal/sentiment"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                        - Health check
  GET  /api/recommendations/latest    - Ranked recommendations
  GET  /api/recommendations/{symbol}  - Latest recommendation for one symbol
  GET  /api/scores/{symbol}           - Quantitative and risk score history
  GET  /api/sentiment/market          - Market-wide news sentiment
  GET  /api/pipeline/runs             - Recent pipeline runs
  POST /api/pipeline/run              - Trigger a pipeline run

Example:
  go run ./cmd/alphagen api
  go run ./cmd/alphagen api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	ctx := cmd.Context()

	orchestrator, err := a.newOrchestrator(ctx)
	if err != nil {
		return err
	}

	aggregator := sentiment.NewAggregator(a.sentiments, a.log)
	cache := a.newCache()

	recHandler := handlers.NewRecommendationHandler(a.recs, cache, a.log)
	scoreHandler := handlers.NewScoreHandler(a.quantScores, a.riskScores, a.log)
	sentimentHandler := handlers.NewSentimentHandler(aggregator, a.log)
	pipelineHandler := handlers.NewPipelineHandler(a.runs, orchestrator, a.log)

	router := api.NewRouter(recHandler, scoreHandler, sentimentHandler, pipelineHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("AlphaGen API running on http://localhost:%s\n", a.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
