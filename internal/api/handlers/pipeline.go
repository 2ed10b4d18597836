package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/logger"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
	manualRunTimeout = 30 * time.Minute
)

// PipelineTrigger runs the analysis pipeline for one date. The
// orchestrator satisfies it.
type PipelineTrigger interface {
	Run(ctx context.Context, date time.Time, symbols []string) (*contracts.RunReport, error)
}

// PipelineHandler serves run history and manual triggering
type PipelineHandler struct {
	runs    contracts.RunRepository
	trigger PipelineTrigger
	logger  *logger.Logger

	running atomic.Bool
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(runs contracts.RunRepository, trigger PipelineTrigger, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		runs:    runs,
		trigger: trigger,
		logger:  log,
	}
}

// GetRuns returns recent pipeline run reports, newest first. The
// "limit" query parameter caps the count, default 20.
func (h *PipelineHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxRunsLimit {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	reports, err := h.runs.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load pipeline runs")
		respondError(w, http.StatusInternalServerError, "Failed to load pipeline runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(reports),
		"runs":  reports,
	})
}

// TriggerRequest is the optional POST body for a manual run
type TriggerRequest struct {
	Date    string   `json:"date,omitempty"`    // YYYY-MM-DD, default today
	Symbols []string `json:"symbols,omitempty"` // default full universe
}

// TriggerRun starts a pipeline run in the background and returns 202.
// Only one manual run may be in flight at a time.
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' (want YYYY-MM-DD)")
			return
		}
		date = parsed
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = universe.Symbols()
	} else {
		for i, s := range symbols {
			symbols[i] = universe.FormatSymbol(s)
		}
	}

	if !h.running.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "A pipeline run is already in progress")
		return
	}

	go func() {
		defer h.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), manualRunTimeout)
		defer cancel()

		report, err := h.trigger.Run(ctx, date, symbols)
		if err != nil {
			h.logger.WithError(err).Error("Manual pipeline run failed")
			return
		}
		h.logger.WithFields(map[string]interface{}{
			"run_id":    report.RunID,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
			"skipped":   report.Skipped,
		}).Info("Manual pipeline run finished")
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"date":    date.Format("2006-01-02"),
		"symbols": len(symbols),
	})
}
