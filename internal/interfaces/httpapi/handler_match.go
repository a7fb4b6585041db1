package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/feed"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// IngestScores accepts the same payload the feed consumer reads from the
// queue. The path match ID wins over the one in the body.
func (h *Handler) IngestScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestScores")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err))
		return
	}

	batch, err := feed.DecodeScoreMessage(body, matchID)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.ingestion.IngestScores(ctx, batch)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest scores failed", "match_id", matchID, "updates", len(batch.Updates), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) LockMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockMatch")
	defer span.End()

	result, err := h.lifecycle.LockMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteMatch")
	defer span.End()

	var req completeMatchRequest
	if err := decodeJSONBody(w, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	result, err := h.lifecycle.CompleteMatch(ctx, matchID, req.Result)
	if err != nil {
		h.logger.WarnContext(ctx, "complete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.settlement.SettleMatch(ctx, matchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "settle match failed", "match_id", matchID, "failed", len(result.Failed), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SettleContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleContest")
	defer span.End()

	contestID := r.PathValue("contestID")
	result, err := h.settlement.SettleContest(ctx, contestID)
	if err != nil {
		h.logger.ErrorContext(ctx, "settle contest failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunSettleMatchJob is the job queue callback. A non-2xx reply makes the
// queue retry the delivery.
func (h *Handler) RunSettleMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleMatchJob")
	defer span.End()

	var req usecase.SettleMatchJobInput
	if err := decodeJSONBody(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatcher.HandleSettleMatchJob(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "settle match job failed",
			"match_id", req.MatchID,
			"dispatch_id", req.DispatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
