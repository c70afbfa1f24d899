package httpapi

import (
	"fmt"
	"net/http"

	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type userStatsDTO struct {
	UserID              string        `json:"user_id"`
	RoundsScored        int           `json:"rounds_scored"`
	TotalCorrect        int           `json:"total_correct"`
	AveragePerRound     float64       `json:"average_per_round"`
	BestRound           int           `json:"best_round,omitempty"`
	BestPoints          int           `json:"best_points"`
	WorstRound          int           `json:"worst_round,omitempty"`
	WorstPoints         int           `json:"worst_points"`
	Unicorns            int           `json:"unicorns"`
	UnicornRate         float64       `json:"unicorn_rate"`
	OverallPercentile   percentileDTO `json:"overall_percentile"`
	LastRoundPercentile percentileDTO `json:"last_round_percentile"`
	Streak              streakDTO     `json:"streak"`
}

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	stats, err := h.statsService.UserStats(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "user stats failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userStatsDTO{
		UserID:              stats.UserID,
		RoundsScored:        stats.RoundsScored,
		TotalCorrect:        stats.TotalCorrect,
		AveragePerRound:     stats.AveragePerRound,
		BestRound:           stats.BestRound,
		BestPoints:          stats.BestPoints,
		WorstRound:          stats.WorstRound,
		WorstPoints:         stats.WorstPoints,
		Unicorns:            stats.Unicorns,
		UnicornRate:         stats.UnicornRate,
		OverallPercentile:   percentileToDTO(ctx, stats.OverallPercentile),
		LastRoundPercentile: percentileToDTO(ctx, stats.LastRoundPercentile),
		Streak:              streakToDTO(ctx, stats.Streak),
	})
}
