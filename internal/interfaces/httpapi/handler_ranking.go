package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type percentileDTO struct {
	Available bool    `json:"available"`
	Value     float64 `json:"value"`
}

type rankDeltaDTO struct {
	CurrentRank  int  `json:"currentRank"`
	PreviousRank int  `json:"previousRank"`
	Delta        int  `json:"delta"`
	NewEntrant   bool `json:"newEntrant"`
}

type rankingSummaryDTO struct {
	Overall   percentileDTO `json:"overall"`
	LastRound percentileDTO `json:"lastRound"`
	Delta     *rankDeltaDTO `json:"delta,omitempty"`
}

type roundPercentileDTO struct {
	Round      int     `json:"round"`
	Percentile float64 `json:"percentile"`
}

type streakDTO struct {
	Length     int `json:"length"`
	StartRound int `json:"startRound,omitempty"`
	EndRound   int `json:"endRound,omitempty"`
}

type formRowDTO struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type formLeaderboardDTO struct {
	Window int          `json:"window"`
	Rounds []int        `json:"rounds"`
	Rows   []formRowDTO `json:"rows"`
}

// GetMyRanking bundles both percentile views with the rank movement. A user
// absent from the earlier table gets no delta rather than a zero one.
func (h *Handler) GetMyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRanking")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	overall, err := h.rankingService.OverallPercentile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "overall percentile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	lastRound, err := h.rankingService.LastRoundPercentile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "last round percentile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	summary := rankingSummaryDTO{
		Overall:   percentileToDTO(ctx, overall),
		LastRound: percentileToDTO(ctx, lastRound),
	}

	delta, err := h.rankingService.OverallRankDelta(ctx, principal.UserID)
	switch {
	case err == nil:
		summary.Delta = &rankDeltaDTO{
			CurrentRank:  delta.CurrentRank,
			PreviousRank: delta.PreviousRank,
			Delta:        delta.Delta,
			NewEntrant:   delta.NewEntrant,
		}
	case errors.Is(err, usecase.ErrNotFound):
		// User has no ranked rounds yet; the summary stays deltaless.
	default:
		h.logger.WarnContext(ctx, "rank delta failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) GetMyPercentileHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPercentileHistory")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	sequence, err := h.rankingService.PercentileHistory(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "percentile history failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]roundPercentileDTO, 0, len(sequence))
	for _, entry := range sequence {
		items = append(items, roundPercentileDTO{Round: entry.Round, Percentile: entry.Percentile})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMyStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStreak")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	streak, err := h.rankingService.LongestTopQuartileStreak(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "streak failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, streakToDTO(ctx, streak))
}

func (h *Handler) GetFormLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFormLeaderboard")
	defer span.End()

	window, err := strconv.Atoi(r.URL.Query().Get("window"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: window must be an integer", usecase.ErrInvalidInput))
		return
	}

	board, err := h.rankingService.Form(ctx, window)
	if err != nil {
		h.logger.WarnContext(ctx, "form leaderboard failed", "window", window, "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]formRowDTO, 0, len(board.Rows))
	for _, row := range board.Rows {
		rows = append(rows, formRowDTO{Rank: row.Rank, UserID: row.UserID, Name: row.Name, Points: row.Points})
	}
	writeSuccess(ctx, w, http.StatusOK, formLeaderboardDTO{
		Window: board.Window,
		Rounds: append([]int(nil), board.Rounds...),
		Rows:   rows,
	})
}

func percentileToDTO(ctx context.Context, p usecase.Percentile) percentileDTO {
	return percentileDTO{Available: p.Available, Value: p.Value}
}

func streakToDTO(ctx context.Context, v scoring.StreakSpan) streakDTO {
	return streakDTO{Length: v.Length, StartRound: v.StartRound, EndRound: v.EndRound}
}
