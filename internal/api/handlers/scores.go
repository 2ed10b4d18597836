package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/logger"
)

const defaultHistoryDays = 30

// ScoreHandler serves quantitative and risk score history
type ScoreHandler struct {
	quant  contracts.QuantRepository
	risk   contracts.RiskRepository
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(quant contracts.QuantRepository, risk contracts.RiskRepository, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		quant:  quant,
		risk:   risk,
		logger: log,
	}
}

// ScoreHistoryResponse pairs the quantitative and risk series for one
// symbol over a date range.
type ScoreHistoryResponse struct {
	Symbol       string                        `json:"symbol"`
	From         time.Time                     `json:"from"`
	To           time.Time                     `json:"to"`
	Quantitative []contracts.QuantitativeScore `json:"quantitative"`
	Risk         []contracts.RiskScore         `json:"risk"`
}

// GetHistory returns score history for a symbol. Query parameters
// "from" and "to" take YYYY-MM-DD dates; the default window is the
// trailing 30 days.
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := universe.FormatSymbol(mux.Vars(r)["symbol"])

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -defaultHistoryDays)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date (want YYYY-MM-DD)")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date (want YYYY-MM-DD)")
			return
		}
		to = parsed
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "'to' precedes 'from'")
		return
	}

	ctx := r.Context()

	quantScores, err := h.quant.GetBySymbolAndDateRange(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load quantitative scores")
		respondError(w, http.StatusInternalServerError, "Failed to load score history")
		return
	}

	riskScores, err := h.risk.GetBySymbolAndDateRange(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load risk scores")
		respondError(w, http.StatusInternalServerError, "Failed to load score history")
		return
	}

	respondJSON(w, http.StatusOK, ScoreHistoryResponse{
		Symbol:       symbol,
		From:         from,
		To:           to,
		Quantitative: quantScores,
		Risk:         riskScores,
	})
}
