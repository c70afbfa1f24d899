package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type createLeagueRequest struct {
	Name               string `json:"name" validate:"required,max=120"`
	StartRoundOverride *int   `json:"start_round_override" validate:"omitempty,gt=0"`
}

type joinLeagueRequest struct {
	InviteCode string `json:"invite_code" validate:"required,min=6,max=32"`
}

type leagueDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	OwnerUserID        string `json:"owner_user_id"`
	InviteCode         string `json:"invite_code"`
	StartRoundOverride *int   `json:"start_round_override,omitempty"`
	CreatedAtUTC       string `json:"created_at_utc"`
}

type leagueMemberDTO struct {
	UserID      string `json:"user_id"`
	JoinedAtUTC string `json:"joined_at_utc"`
}

type standingsRowDTO struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	Unicorns     int    `json:"unicorns"`
	CorrectPicks int    `json:"correct_picks"`
}

type leagueStandingsDTO struct {
	LeagueID      string            `json:"league_id"`
	StartRound    int               `json:"start_round"`
	Rounds        []int             `json:"rounds"`
	Rows          []standingsRowDTO `json:"rows"`
	ComputedAtUTC string            `json:"computed_at_utc"`
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeagueRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Create(ctx, principal.UserID, req.Name, req.StartRoundOverride)
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(ctx, item))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinLeagueRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Join(ctx, principal.UserID, req.InviteCode)
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeagues")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagues, err := h.leagueService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my leagues failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(ctx, l))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLeagueMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMembers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	members, err := h.leagueService.Members(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueMemberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, leagueMemberDTO{
			UserID:      m.UserID,
			JoinedAtUTC: m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

type leagueRoundSubmissionsDTO struct {
	LeagueID     string `json:"league_id"`
	Round        int    `json:"round"`
	Members      int    `json:"members"`
	Submitted    int    `json:"submitted"`
	AllMembersIn bool   `json:"all_members_in"`
}

// GetLeagueRoundSubmissions serves the all-members-in condition for one
// league and round.
func (h *Handler) GetLeagueRoundSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueRoundSubmissions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	round, err := roundFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.predictionService.LeagueSubmissions(ctx, leagueID, principal.UserID, round)
	if err != nil {
		h.logger.WarnContext(ctx, "league round submissions failed", "league_id", leagueID, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueRoundSubmissionsDTO{
		LeagueID:     report.LeagueID,
		Round:        report.Round,
		Members:      report.Members,
		Submitted:    report.Submitted,
		AllMembersIn: report.AllMembersIn,
	})
}

func (h *Handler) GetLeagueStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStandings")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	table, err := h.standingsService.Build(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "league standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(ctx, table))
}

func leagueToDTO(ctx context.Context, v league.League) leagueDTO {
	return leagueDTO{
		ID:                 v.ID,
		Name:               v.Name,
		OwnerUserID:        v.OwnerUserID,
		InviteCode:         v.InviteCode,
		StartRoundOverride: v.StartRoundOverride,
		CreatedAtUTC:       v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func standingsToDTO(ctx context.Context, table usecase.LeagueStandings) leagueStandingsDTO {
	rows := make([]standingsRowDTO, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, standingsRowDTO{
			Rank:         row.Rank,
			UserID:       row.UserID,
			Name:         row.Name,
			Points:       row.Points,
			Unicorns:     row.Unicorns,
			CorrectPicks: row.CorrectPicks,
		})
	}
	return leagueStandingsDTO{
		LeagueID:      table.LeagueID,
		StartRound:    table.StartRound,
		Rounds:        append([]int(nil), table.Rounds...),
		Rows:          rows,
		ComputedAtUTC: table.ComputedAt.UTC().Format(time.RFC3339),
	}
}
