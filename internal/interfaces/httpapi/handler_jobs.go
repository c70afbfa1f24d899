package httpapi

import (
	"fmt"
	"net/http"

	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

// RunSyncResultsJob pulls pending final results from the feed. The scheduler
// calls it on an interval; overlapping calls collapse inside the service.
func (h *Handler) RunSyncResultsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncResultsJob")
	defer span.End()

	if h.resultsSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: results sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, err := h.resultsSyncService.SyncAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync results job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
