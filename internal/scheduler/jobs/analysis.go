package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alphagen/alphagen/internal/pipeline"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/logger"
)

// AnalysisJob runs the full daily pipeline: quant and risk scoring,
// sentiment processing and recommendation synthesis.
type AnalysisJob struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

func NewAnalysisJob(orchestrator *pipeline.Orchestrator, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{orchestrator: orchestrator, logger: log}
}

func (j *AnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule: 10:15 UTC weekdays, after data collection settles.
func (j *AnalysisJob) Schedule() string {
	return "0 15 10 * * 1-5"
}

func (j *AnalysisJob) Run(ctx context.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	report, err := j.orchestrator.Run(ctx, date, universe.Symbols())
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if report.Succeeded == 0 && report.Total() > 0 {
		return fmt.Errorf("pipeline produced no recommendations (%d failed, %d skipped)", report.Failed, report.Skipped)
	}

	return nil
}
