package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

// Per-status timestamps and trace IDs are kept; a later completion clears the failure.
const upsertJobDispatchSuffix = `ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    job_path = EXCLUDED.job_path,
    match_public_id = EXCLUDED.match_public_id,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    sent_at = COALESCE(EXCLUDED.sent_at, job_dispatches.sent_at),
    completed_at = COALESCE(EXCLUDED.completed_at, job_dispatches.completed_at),
    failed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE COALESCE(EXCLUDED.failed_at, job_dispatches.failed_at)
    END,
    last_error = EXCLUDED.last_error,
    sent_trace_id = COALESCE(EXCLUDED.sent_trace_id, job_dispatches.sent_trace_id),
    sent_span_id = COALESCE(EXCLUDED.sent_span_id, job_dispatches.sent_span_id),
    completed_trace_id = COALESCE(EXCLUDED.completed_trace_id, job_dispatches.completed_trace_id),
    completed_span_id = COALESCE(EXCLUDED.completed_span_id, job_dispatches.completed_span_id),
    failed_trace_id = COALESCE(EXCLUDED.failed_trace_id, job_dispatches.failed_trace_id),
    failed_span_id = COALESCE(EXCLUDED.failed_span_id, job_dispatches.failed_span_id),
    updated_at = NOW(),
    deleted_at = NULL`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	model, err := newJobDispatchModel(event)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", model.DispatchID, event.Status, err)
	}
	return nil
}

func (r *JobDispatchRepository) GetStatus(ctx context.Context, dispatchID string) (jobscheduler.DispatchStatus, bool, error) {
	query, args, err := qb.Select("status").From("job_dispatches").
		Where(
			qb.Eq("dispatch_id", dispatchID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get job dispatch status query: %w", err)
	}

	var status string
	if err := r.db.GetContext(ctx, &status, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get job dispatch dispatch_id=%s: %w", dispatchID, err)
	}
	return jobscheduler.DispatchStatus(status), true, nil
}

func newJobDispatchModel(event jobscheduler.DispatchEvent) (jobDispatchInsertModel, error) {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return jobDispatchInsertModel{}, fmt.Errorf("dispatch id is required")
	}

	payload := "{}"
	if len(event.Payload) > 0 {
		encoded, err := encodeJSON(event.Payload)
		if err != nil {
			return jobDispatchInsertModel{}, fmt.Errorf("marshal job dispatch payload: %w", err)
		}
		payload = encoded
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    orDefault(event.JobName, "unknown"),
		JobPath:    orDefault(event.JobPath, "/unknown"),
		MatchID:    orDefault(event.MatchID, "unknown"),
		Payload:    payload,
		Status:     string(event.Status),
	}

	traceID, spanID := optionalString(event.TraceID), optionalString(event.SpanID)
	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt, model.SentTraceID, model.SentSpanID = &occurredAt, traceID, spanID
	case jobscheduler.StatusCompleted:
		model.CompletedAt, model.CompletedTraceID, model.CompletedSpanID = &occurredAt, traceID, spanID
	case jobscheduler.StatusFailed:
		model.FailedAt, model.FailedTraceID, model.FailedSpanID = &occurredAt, traceID, spanID
		model.LastError = optionalString(event.ErrorMessage)
	}
	return model, nil
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
