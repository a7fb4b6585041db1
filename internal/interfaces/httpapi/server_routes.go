package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if handler.realtime != nil {
		mux.Handle("GET /ws", handler.realtime)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/contests/{contestID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/contests/{contestID}/leaderboard/users/{userID}", handler.GetUserStanding)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/contests/{contestID}/leaderboard/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStanding)))
	mux.Handle("POST /v1/contests/{contestID}/teams", RequireAuth(verifier, http.HandlerFunc(handler.SubmitTeam)))
	mux.Handle("GET /v1/wallets/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyWallet)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireInternalJobToken(internalJobToken, fn))
	}

	internal("POST /v1/internal/matches/{matchID}/scores", handler.IngestScores)
	internal("POST /v1/internal/matches/{matchID}/lock", handler.LockMatch)
	internal("POST /v1/internal/matches/{matchID}/complete", handler.CompleteMatch)
	internal("POST /v1/internal/matches/{matchID}/settle", handler.SettleMatch)
	internal("POST /v1/internal/contests", handler.CreateContest)
	internal("POST /v1/internal/contests/{contestID}/settle", handler.SettleContest)
	internal("POST "+settleMatchJobPath, handler.RunSettleMatchJob)
}
