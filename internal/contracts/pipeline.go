package contracts

import "time"

// SymbolStage is the per-symbol, per-run pipeline state.
//
//	PENDING → QUANT_SCORED → RISK_SCORED → [QUAL_SCORED | QUAL_SKIPPED] → SYNTHESIZED → PERSISTED
//
// FAILED is terminal and reachable from PENDING, QUANT_SCORED, and
// RISK_SCORED when a mandatory computation errors.
type SymbolStage string

const (
	StagePending     SymbolStage = "PENDING"
	StageQuantScored SymbolStage = "QUANT_SCORED"
	StageRiskScored  SymbolStage = "RISK_SCORED"
	StageQualScored  SymbolStage = "QUAL_SCORED"
	StageQualSkipped SymbolStage = "QUAL_SKIPPED"
	StageSynthesized SymbolStage = "SYNTHESIZED"
	StagePersisted   SymbolStage = "PERSISTED"
	StageFailed      SymbolStage = "FAILED"
)

// stageSuccessors holds the legal forward transitions
var stageSuccessors = map[SymbolStage][]SymbolStage{
	StagePending:     {StageQuantScored, StageFailed},
	StageQuantScored: {StageRiskScored, StageFailed},
	StageRiskScored:  {StageQualScored, StageQualSkipped, StageFailed},
	StageQualScored:  {StageSynthesized},
	StageQualSkipped: {StageSynthesized},
	StageSynthesized: {StagePersisted},
}

// CanTransition reports whether moving from s to next is legal
func (s SymbolStage) CanTransition(next SymbolStage) bool {
	for _, allowed := range stageSuccessors[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage ends a symbol's run
func (s SymbolStage) Terminal() bool {
	return s == StagePersisted || s == StageFailed
}

// SymbolResult records the outcome of one symbol within a run.
// Failed symbols are reported, never silently dropped.
type SymbolResult struct {
	Symbol string      `json:"symbol"`
	Stage  SymbolStage `json:"stage"`
	Error  string      `json:"error,omitempty"`
}

// Failed reports whether the symbol ended in FAILED
func (r *SymbolResult) Failed() bool {
	return r.Stage == StageFailed
}

// RunReport summarizes one pipeline run across the universe
type RunReport struct {
	RunID      string         `json:"run_id"`
	Date       time.Time      `json:"date"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Duration   time.Duration  `json:"duration"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"` // excluded for insufficient data, not an error
	Symbols    []SymbolResult `json:"symbols"`
}

// Total returns the number of symbols the run touched
func (r *RunReport) Total() int {
	return len(r.Symbols)
}
