package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/quant"
	"github.com/alphagen/alphagen/internal/recommend"
	"github.com/alphagen/alphagen/internal/risk"
	"github.com/alphagen/alphagen/internal/sentiment"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/logger"
)

// Orchestrator runs the daily analysis sequence over the universe:
// quant and risk scoring per symbol (concurrent), sentiment batch
// processing (throttled, in the background), then synthesis and
// persistence. One symbol's failure never aborts the others.
type Orchestrator struct {
	analyzer    *quant.Analyzer
	riskCalc    *risk.Calculator
	processor   *sentiment.Processor
	aggregator  *sentiment.Aggregator
	synthesizer *recommend.Synthesizer

	quantRepo contracts.QuantRepository
	riskRepo  contracts.RiskRepository
	recRepo   contracts.RecommendationRepository
	runs      contracts.RunRepository

	cfg    config.AnalysisConfig
	logger *logger.Logger
}

func NewOrchestrator(
	analyzer *quant.Analyzer,
	riskCalc *risk.Calculator,
	processor *sentiment.Processor,
	aggregator *sentiment.Aggregator,
	synthesizer *recommend.Synthesizer,
	quantRepo contracts.QuantRepository,
	riskRepo contracts.RiskRepository,
	recRepo contracts.RecommendationRepository,
	runs contracts.RunRepository,
	cfg config.AnalysisConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		analyzer:    analyzer,
		riskCalc:    riskCalc,
		processor:   processor,
		aggregator:  aggregator,
		synthesizer: synthesizer,
		quantRepo:   quantRepo,
		riskRepo:    riskRepo,
		recRepo:     recRepo,
		runs:        runs,
		cfg:         cfg,
		logger:      log,
	}
}

// symbolState is the per-symbol arena entry for one run. Each worker
// owns exactly one entry, so no locking is needed beyond the final
// collection.
type symbolState struct {
	symbol string
	stage  contracts.SymbolStage
	quant  *contracts.QuantitativeScore
	risk   *contracts.RiskScore
	err    error
}

func (s *symbolState) fail(err error) {
	s.stage = contracts.StageFailed
	s.err = err
}

// Run executes the full pipeline for one date across the given
// symbols and persists a run report.
func (o *Orchestrator) Run(ctx context.Context, date time.Time, symbols []string) (*contracts.RunReport, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	o.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"date":    date.Format("2006-01-02"),
		"symbols": len(symbols),
	}).Info("Pipeline run started")

	// Sentiment batch runs in the background; synthesis waits for it
	// up to the qualitative timeout, then proceeds without it.
	lookback := time.Duration(o.cfg.LookbackHours) * time.Hour
	since := date.Add(-lookback)
	qualDone := make(chan struct{})
	go func() {
		defer close(qualDone)
		if _, err := o.processor.ProcessBatch(ctx, since); err != nil {
			o.logger.WithError(err).Warn("Sentiment batch failed, proceeding without fresh results")
		}
	}()

	// Valuation needs the whole universe's ratio cross-section first.
	universe, err := o.analyzer.BuildUniverseRatios(ctx, symbols, date)
	if err != nil {
		return nil, err
	}

	states := o.scoreSymbols(ctx, date, symbols, universe)

	qualReady := o.waitForQualitative(ctx, qualDone)

	for _, state := range states {
		if state.stage != contracts.StageRiskScored {
			continue
		}
		o.synthesizeSymbol(ctx, state, date, since, qualReady)
	}

	report := buildReport(runID, date, startedAt, states)

	if err := o.runs.SaveReport(ctx, report); err != nil {
		o.logger.WithError(err).Error("Failed to persist run report")
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
		"duration":  report.Duration.String(),
	}).Info("Pipeline run finished")

	return report, nil
}

// scoreSymbols runs quant and risk scoring concurrently across the
// universe with a bounded worker pool.
func (o *Orchestrator) scoreSymbols(ctx context.Context, date time.Time, symbols []string, universe *quant.UniverseRatios) []*symbolState {
	states := make([]*symbolState, len(symbols))
	for i, symbol := range symbols {
		states[i] = &symbolState{symbol: symbol, stage: contracts.StagePending}
	}

	jobs := make(chan *symbolState)
	var wg sync.WaitGroup

	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for state := range jobs {
				o.scoreSymbol(ctx, state, date, universe)
			}
		}()
	}

	for _, state := range states {
		select {
		case jobs <- state:
		case <-ctx.Done():
			state.fail(ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	return states
}

func (o *Orchestrator) scoreSymbol(ctx context.Context, state *symbolState, date time.Time, universe *quant.UniverseRatios) {
	quantScore, err := o.analyzer.Analyze(ctx, state.symbol, date, universe)
	if err != nil {
		state.fail(err)
		return
	}
	if err := o.quantRepo.Save(ctx, quantScore); err != nil {
		state.fail(err)
		return
	}
	state.quant = quantScore
	state.stage = contracts.StageQuantScored

	riskScore, err := o.riskCalc.Calculate(ctx, state.symbol, date)
	if err != nil {
		state.fail(err)
		return
	}
	if err := o.riskRepo.Save(ctx, riskScore); err != nil {
		state.fail(err)
		return
	}
	state.risk = riskScore
	state.stage = contracts.StageRiskScored
}

// waitForQualitative blocks until the sentiment batch finishes or the
// qualitative timeout elapses. A timeout is not an error: synthesis
// proceeds with qualitative marked absent.
func (o *Orchestrator) waitForQualitative(ctx context.Context, qualDone <-chan struct{}) bool {
	timeout := o.cfg.QualTimeout
	if timeout <= 0 {
		<-qualDone
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-qualDone:
		return true
	case <-timer.C:
		o.logger.Warn("Qualitative stage timed out, synthesizing without sentiment")
		return false
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) synthesizeSymbol(ctx context.Context, state *symbolState, date, since time.Time, qualReady bool) {
	var qual *contracts.QualitativeScore
	if qualReady {
		var err error
		qual, err = o.aggregator.ScoreSymbol(ctx, state.symbol, since)
		if err != nil {
			o.logger.WithError(err).WithField("symbol", state.symbol).Warn("Qualitative aggregation failed, proceeding without it")
			qual = nil
		}
	}

	if qual != nil {
		state.stage = contracts.StageQualScored
	} else {
		state.stage = contracts.StageQualSkipped
	}

	rec, err := o.synthesizer.Synthesize(state.quant, state.risk, qual, date)
	if err != nil {
		state.err = err
		return
	}
	state.stage = contracts.StageSynthesized

	if err := o.recRepo.Save(ctx, rec); err != nil {
		state.err = err
		return
	}
	state.stage = contracts.StagePersisted
}

// buildReport tallies the run. DataUnavailable failures count as
// skipped, everything else as failed.
func buildReport(runID string, date, startedAt time.Time, states []*symbolState) *contracts.RunReport {
	finishedAt := time.Now().UTC()
	report := &contracts.RunReport{
		RunID:      runID,
		Date:       date,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Symbols:    make([]contracts.SymbolResult, 0, len(states)),
	}

	for _, state := range states {
		result := contracts.SymbolResult{
			Symbol: state.symbol,
			Stage:  state.stage,
		}
		if state.err != nil {
			result.Error = state.err.Error()
		}

		switch {
		case state.stage == contracts.StagePersisted:
			report.Succeeded++
		case errors.Is(state.err, contracts.ErrDataUnavailable):
			report.Skipped++
		default:
			report.Failed++
		}

		report.Symbols = append(report.Symbols, result)
	}
	return report
}
