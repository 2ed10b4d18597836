package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alphagen/alphagen/internal/sentiment"
	"github.com/alphagen/alphagen/pkg/logger"
)

const (
	defaultSentimentHours = 24
	maxSentimentHours     = 24 * 30
)

// SentimentHandler serves aggregated news sentiment
type SentimentHandler struct {
	aggregator *sentiment.Aggregator
	logger     *logger.Logger
}

// NewSentimentHandler creates a new sentiment handler
func NewSentimentHandler(agg *sentiment.Aggregator, log *logger.Logger) *SentimentHandler {
	return &SentimentHandler{
		aggregator: agg,
		logger:     log,
	}
}

// MarketSentimentResponse reports market-wide sentiment. Available is
// false when no qualifying results exist in the window; Sentiment is
// omitted rather than zeroed in that case.
type MarketSentimentResponse struct {
	Available bool                       `json:"available"`
	Hours     int                        `json:"hours"`
	Sentiment *sentiment.MarketSentiment `json:"sentiment,omitempty"`
}

// GetMarket returns market-wide sentiment over a trailing window. The
// "hours" query parameter sets the window, default 24.
func (h *SentimentHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	hours := defaultSentimentHours
	if v := r.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxSentimentHours {
			respondError(w, http.StatusBadRequest, "Invalid 'hours' parameter")
			return
		}
		hours = parsed
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	market, err := h.aggregator.Market(r.Context(), since)
	if err != nil {
		h.logger.WithError(err).Error("Failed to aggregate market sentiment")
		respondError(w, http.StatusInternalServerError, "Failed to aggregate market sentiment")
		return
	}

	respondJSON(w, http.StatusOK, MarketSentimentResponse{
		Available: market != nil,
		Hours:     hours,
		Sentiment: market,
	})
}
