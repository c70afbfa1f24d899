package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/ferguskeenan/prediction-league/internal/platform/logging"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

type Handler struct {
	predictionService   *usecase.PredictionService
	leagueService       *usecase.LeagueService
	standingsService    *usecase.StandingsService
	rankingService      *usecase.RankingService
	statsService        *usecase.StatsService
	resultsSyncService  *usecase.ResultsSyncService
	fixtureAdminService *usecase.FixtureAdminService
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	predictionService *usecase.PredictionService,
	leagueService *usecase.LeagueService,
	standingsService *usecase.StandingsService,
	rankingService *usecase.RankingService,
	statsService *usecase.StatsService,
	resultsSyncService *usecase.ResultsSyncService,
	fixtureAdminService *usecase.FixtureAdminService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		predictionService:   predictionService,
		leagueService:       leagueService,
		standingsService:    standingsService,
		rankingService:      rankingService,
		statsService:        statsService,
		resultsSyncService:  resultsSyncService,
		fixtureAdminService: fixtureAdminService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func roundFromPath(r *http.Request) (int, error) {
	raw := r.PathValue("round")
	round, err := strconv.Atoi(raw)
	if err != nil || round <= 0 {
		return 0, fmt.Errorf("%w: round %q must be a positive integer", usecase.ErrInvalidInput, raw)
	}
	return round, nil
}
