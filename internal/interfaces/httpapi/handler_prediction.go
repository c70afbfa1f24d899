package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type savePickRequest struct {
	Outcome string `json:"outcome" validate:"required,max=8"`
}

type pickDTO struct {
	FixtureIndex int    `json:"fixtureIndex"`
	Outcome      string `json:"outcome"`
	UpdatedAt    string `json:"updatedAt"`
}

type roundStatusDTO struct {
	Round          int    `json:"round"`
	State          string `json:"state"`
	Deadline       string `json:"deadline,omitempty"`
	Submitted      bool   `json:"submitted"`
	PickCount      int    `json:"pickCount"`
	FixtureIndexes []int  `json:"fixtureIndexes"`
}

type liveScoreDTO struct {
	UserID      string `json:"userId"`
	Correct     int    `json:"correct"`
	Provisional bool   `json:"provisional"`
}

func (h *Handler) SaveRoundPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveRoundPick")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	fixtureIndex, err := strconv.Atoi(r.PathValue("fixtureIndex"))
	if err != nil || fixtureIndex < 0 {
		writeError(ctx, w, fmt.Errorf("%w: fixture index must be a non-negative integer", usecase.ErrInvalidInput))
		return
	}

	var req savePickRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.predictionService.SavePick(ctx, principal.UserID, round, fixtureIndex, req.Outcome); err != nil {
		h.logger.WarnContext(ctx, "save pick failed", "user_id", principal.UserID, "round", round, "fixture_index", fixtureIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickDTO{
		FixtureIndex: fixtureIndex,
		Outcome:      req.Outcome,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ListRoundPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.predictionService.ListPicks(ctx, principal.UserID, round)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "user_id", principal.UserID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(picks))
	for _, p := range picks {
		items = append(items, pickToDTO(ctx, p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRound")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.predictionService.Submit(ctx, principal.UserID, round); err != nil {
		h.logger.WarnContext(ctx, "submit round failed", "user_id", principal.UserID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	status, err := h.predictionService.SubmissionStatus(ctx, principal.UserID, round)
	if err != nil {
		h.logger.WarnContext(ctx, "submission status after submit failed", "user_id", principal.UserID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundStatusToDTO(ctx, status))
}

func (h *Handler) GetRoundStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundStatus")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.predictionService.SubmissionStatus(ctx, principal.UserID, round)
	if err != nil {
		h.logger.WarnContext(ctx, "round status failed", "user_id", principal.UserID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundStatusToDTO(ctx, status))
}

// ListLiveScores serves the in-play scoreboard. Figures are provisional and
// recomputed per request; they never persist.
func (h *Handler) ListLiveScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveScores")
	defer span.End()

	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scores, err := h.resultsSyncService.ProvisionalScores(ctx, round)
	if err != nil {
		h.logger.WarnContext(ctx, "live scores failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]liveScoreDTO, 0, len(scores))
	for _, score := range scores {
		items = append(items, liveScoreToDTO(ctx, score))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func pickToDTO(ctx context.Context, p pick.Pick) pickDTO {
	return pickDTO{
		FixtureIndex: p.FixtureIndex,
		Outcome:      string(p.Outcome),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func roundStatusToDTO(ctx context.Context, status usecase.RoundStatus) roundStatusDTO {
	dto := roundStatusDTO{
		Round:          status.Round,
		State:          string(status.State),
		Submitted:      status.Submitted,
		PickCount:      status.PickCount,
		FixtureIndexes: append([]int(nil), status.FixtureIDs...),
	}
	if status.Deadline != nil {
		dto.Deadline = status.Deadline.UTC().Format(time.RFC3339)
	}
	return dto
}

func liveScoreToDTO(ctx context.Context, score scoring.RoundScore) liveScoreDTO {
	return liveScoreDTO{
		UserID:      score.UserID,
		Correct:     score.Correct,
		Provisional: score.Provisional,
	}
}
