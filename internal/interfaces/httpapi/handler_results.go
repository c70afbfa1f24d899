package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type ingestResultRequest struct {
	Round        int    `json:"round" validate:"required,gt=0"`
	FixtureIndex int    `json:"fixture_index" validate:"gte=0"`
	Code         string `json:"code" validate:"omitempty,max=8"`
	HomeGoals    *int   `json:"home_goals" validate:"omitempty,gte=0"`
	AwayGoals    *int   `json:"away_goals" validate:"omitempty,gte=0"`
}

type importFixturesRequest struct {
	Fixtures []importFixtureRecord `json:"fixtures" validate:"required,min=1,dive"`
}

type importFixtureRecord struct {
	Round      int    `json:"round" validate:"required,gt=0"`
	Index      int    `json:"index" validate:"gte=0"`
	HomeTeam   string `json:"home_team" validate:"required,max=120"`
	AwayTeam   string `json:"away_team" validate:"required,max=120"`
	KickoffAt  string `json:"kickoff_at" validate:"omitempty"`
	MatchRefID int64  `json:"match_ref_id"`
}

// IngestResult accepts one pushed final result from the feed side. Duplicates
// for an already-recorded fixture are absorbed, not rejected.
func (h *Handler) IngestResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestResult")
	defer span.End()

	var req ingestResultRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := result.Result{
		Round:        req.Round,
		FixtureIndex: req.FixtureIndex,
		Code:         req.Code,
		HomeGoals:    req.HomeGoals,
		AwayGoals:    req.AwayGoals,
	}
	if err := h.resultsSyncService.Ingest(ctx, item); err != nil {
		h.logger.WarnContext(ctx, "ingest result failed", "round", req.Round, "fixture_index", req.FixtureIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"round":         req.Round,
		"fixture_index": req.FixtureIndex,
	})
}

// ImportFixtures takes the admin schedule batch for one or more rounds.
func (h *Handler) ImportFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportFixtures")
	defer span.End()

	var req importFixturesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]fixture.Fixture, 0, len(req.Fixtures))
	for _, record := range req.Fixtures {
		item := fixture.Fixture{
			Round:      record.Round,
			Index:      record.Index,
			HomeTeam:   record.HomeTeam,
			AwayTeam:   record.AwayTeam,
			MatchRefID: record.MatchRefID,
		}
		if record.KickoffAt != "" {
			kickoff, err := time.Parse(time.RFC3339, record.KickoffAt)
			if err != nil {
				writeError(ctx, w, invalidKickoffError(record.Round, record.Index, err))
				return
			}
			item.KickoffAt = kickoff.UTC()
		}
		items = append(items, item)
	}

	count, err := h.fixtureAdminService.ImportFixtures(ctx, items)
	if err != nil {
		h.logger.WarnContext(ctx, "import fixtures failed", "count", len(items), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"imported": count})
}

func invalidKickoffError(round, index int, err error) error {
	return fmt.Errorf("%w: kickoff for round %d index %d is not RFC3339: %v", usecase.ErrInvalidInput, round, index, err)
}
