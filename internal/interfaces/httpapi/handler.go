package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// HealthCheck reports one dependency, e.g. the database or Redis.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Contests    *usecase.ContestService
	Leaderboard *usecase.LeaderboardService
	Ingestion   *usecase.IngestionService
	Lifecycle   *usecase.MatchLifecycleService
	Settlement  *usecase.SettlementService
	Dispatcher  *usecase.SettlementDispatcher
	Wallets     *usecase.WalletService
}

type Handler struct {
	contests     *usecase.ContestService
	leaderboard  *usecase.LeaderboardService
	ingestion    *usecase.IngestionService
	lifecycle    *usecase.MatchLifecycleService
	settlement   *usecase.SettlementService
	dispatcher   *usecase.SettlementDispatcher
	wallets      *usecase.WalletService
	realtime     http.Handler
	healthChecks map[string]HealthCheck
	logger       *logging.Logger
	validator    *validator.Validate
}

// NewHandler wires the HTTP surface. realtime serves GET /ws and may be nil.
func NewHandler(services Services, realtime http.Handler, healthChecks map[string]HealthCheck, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		contests:     services.Contests,
		leaderboard:  services.Leaderboard,
		ingestion:    services.Ingestion,
		lifecycle:    services.Lifecycle,
		settlement:   services.Settlement,
		dispatcher:   services.Dispatcher,
		wallets:      services.Wallets,
		realtime:     realtime,
		healthChecks: healthChecks,
		logger:       logger.Named("httpapi"),
		validator:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeSuccess(ctx, w, status, healthDTO{Status: overall, Checks: checks})
}
