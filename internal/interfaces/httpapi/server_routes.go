package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPredictionRoutes(mux, handler, verifier)
	registerAuthorizedLeagueRoutes(mux, handler, verifier)
	registerAuthorizedRankingRoutes(mux, handler, verifier)
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/rounds/{round}/status", RequireAuth(verifier, http.HandlerFunc(handler.GetRoundStatus)))
	mux.Handle("GET /v1/rounds/{round}/picks", RequireAuth(verifier, http.HandlerFunc(handler.ListRoundPicks)))
	mux.Handle("PUT /v1/rounds/{round}/picks/{fixtureIndex}", RequireAuth(verifier, http.HandlerFunc(handler.SaveRoundPick)))
	mux.Handle("POST /v1/rounds/{round}/submission", RequireAuth(verifier, http.HandlerFunc(handler.SubmitRound)))
	mux.Handle("GET /v1/rounds/{round}/live-scores", RequireAuth(verifier, http.HandlerFunc(handler.ListLiveScores)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("GET /v1/leagues/{leagueID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueMembers)))
	mux.Handle("GET /v1/leagues/{leagueID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueStandings)))
	mux.Handle("GET /v1/leagues/{leagueID}/rounds/{round}/submissions", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueRoundSubmissions)))
}

func registerAuthorizedRankingRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/rankings/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRanking)))
	mux.Handle("GET /v1/rankings/me/history", RequireAuth(verifier, http.HandlerFunc(handler.GetMyPercentileHistory)))
	mux.Handle("GET /v1/rankings/me/streak", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStreak)))
	mux.Handle("GET /v1/rankings/form", RequireAuth(verifier, http.HandlerFunc(handler.GetFormLeaderboard)))
	mux.Handle("GET /v1/stats/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStats)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncResultsJob)))
	mux.Handle("POST /v1/internal/ingestion/results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestResult)))
	mux.Handle("POST /v1/internal/ingestion/fixtures", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ImportFixtures)))
}
