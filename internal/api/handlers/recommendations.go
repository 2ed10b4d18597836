package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/logger"
	"github.com/alphagen/alphagen/pkg/redis"
)

const latestCacheTTL = 5 * time.Minute

// RecommendationHandler serves the ranked recommendation records
type RecommendationHandler struct {
	recs   contracts.RecommendationRepository
	cache  *redis.Cache // nil when redis is disabled
	logger *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recs contracts.RecommendationRepository, cache *redis.Cache, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recs:   recs,
		cache:  cache,
		logger: log,
	}
}

// RecommendationListResponse is the ranked universe view
type RecommendationListResponse struct {
	Count           int                              `json:"count"`
	Recommendations []contracts.DailyRecommendation `json:"recommendations"`
}

// GetLatest returns the most recent recommendation per symbol, ranked
// by composite score descending.
func (h *RecommendationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	const cacheKey = "recommendations:latest"
	if h.cache != nil {
		var cached RecommendationListResponse
		found, err := h.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Recommendation cache read failed")
		} else if found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	recs, err := h.recs.GetLatestForUniverse(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}

	resp := RecommendationListResponse{
		Count:           len(recs),
		Recommendations: recs,
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, resp, latestCacheTTL); err != nil {
			h.logger.WithError(err).Warn("Recommendation cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetBySymbol returns the most recent recommendation for one symbol.
// A symbol with no stored recommendation yields 404, not an empty
// record.
func (h *RecommendationHandler) GetBySymbol(w http.ResponseWriter, r *http.Request) {
	symbol := universe.FormatSymbol(mux.Vars(r)["symbol"])

	rec, err := h.recs.GetLatestBySymbol(r.Context(), symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load recommendation")
		respondError(w, http.StatusInternalServerError, "Failed to load recommendation")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "No recommendation for symbol "+symbol)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}
