package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

const (
	SettlementModeInline = "inline"
	SettlementModeQueue  = "queue"

	settleMatchJobName = "settle-match"
	SettleMatchJobPath = "/v1/internal/jobs/settle-match"
)

type SettlementDispatcherConfig struct {
	Mode        string
	DedupBucket time.Duration
}

type DispatchResult struct {
	Mode       string             `json:"mode"`
	DispatchID string             `json:"dispatchId,omitempty"`
	Settled    *SettleMatchResult `json:"settled,omitempty"`
}

type SettleMatchJobInput struct {
	MatchID    string `json:"match_id"`
	DispatchID string `json:"dispatch_id"`
}

// SettlementDispatcher hands completed matches to settlement either inline or
// through the job queue, and records every queued dispatch.
type SettlementDispatcher struct {
	settlement   *SettlementService
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          SettlementDispatcherConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewSettlementDispatcher(
	settlement *SettlementService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg SettlementDispatcherConfig,
	logger *logging.Logger,
) *SettlementDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Mode != SettlementModeQueue {
		cfg.Mode = SettlementModeInline
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = time.Minute
	}

	return &SettlementDispatcher{
		settlement:   settlement,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (d *SettlementDispatcher) DispatchMatchSettlement(ctx context.Context, matchID string) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementDispatcher.DispatchMatchSettlement")
	defer span.End()

	if d.cfg.Mode == SettlementModeInline {
		settled, err := d.settlement.SettleMatch(ctx, matchID)
		return DispatchResult{Mode: d.cfg.Mode, Settled: &settled}, err
	}

	now := d.now().UTC()
	dispatchID := dedupKey(settleMatchJobName, matchID, now, d.cfg.DedupBucket)
	payload := map[string]any{
		"match_id":    matchID,
		"dispatch_id": dispatchID,
	}
	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    settleMatchJobName,
		JobPath:    SettleMatchJobPath,
		MatchID:    matchID,
		Payload:    payload,
		OccurredAt: now,
	}

	if err := d.queue.Enqueue(ctx, SettleMatchJobPath, payload, 0, dispatchID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		d.recordDispatchEvent(ctx, event)
		return DispatchResult{}, fmt.Errorf("%w: enqueue %s match=%s: %w", ErrDependencyUnavailable, settleMatchJobName, matchID, err)
	}

	event.Status = jobscheduler.StatusSent
	d.recordDispatchEvent(ctx, event)
	return DispatchResult{Mode: d.cfg.Mode, DispatchID: dispatchID}, nil
}

// HandleSettleMatchJob is the queue callback. It records completion or failure
// against the dispatch ID and returns the error so the queue retries.
func (d *SettlementDispatcher) HandleSettleMatchJob(ctx context.Context, input SettleMatchJobInput) (SettleMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementDispatcher.HandleSettleMatchJob")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.MatchID == "" {
		return SettleMatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	input.DispatchID = strings.TrimSpace(input.DispatchID)
	if d.dispatchCompleted(ctx, input.DispatchID) {
		d.logger.InfoContext(ctx, "settle-match dispatch already completed",
			"dispatch_id", input.DispatchID,
			"match_id", input.MatchID,
		)
		return SettleMatchResult{MatchID: input.MatchID}, nil
	}

	result, err := d.settlement.SettleMatch(ctx, input.MatchID)

	event := jobscheduler.DispatchEvent{
		DispatchID: input.DispatchID,
		JobName:    settleMatchJobName,
		JobPath:    SettleMatchJobPath,
		MatchID:    input.MatchID,
		Status:     jobscheduler.StatusCompleted,
		Payload: map[string]any{
			"match_id":         input.MatchID,
			"contests_settled": result.ContestsSettled,
			"winners_paid":     result.WinnersPaid,
		},
		OccurredAt: d.now().UTC(),
	}
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
	}
	d.recordDispatchEvent(ctx, event)

	return result, err
}

// dispatchCompleted counts a failed lookup as not completed.
func (d *SettlementDispatcher) dispatchCompleted(ctx context.Context, dispatchID string) bool {
	if d.dispatchRepo == nil || dispatchID == "" {
		return false
	}
	status, found, err := d.dispatchRepo.GetStatus(ctx, dispatchID)
	if err != nil {
		d.logger.WarnContext(ctx, "lookup job dispatch failed", "dispatch_id", dispatchID, "error", err)
		return false
	}
	return found && status.Terminal()
}

func (d *SettlementDispatcher) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"job_name", event.JobName,
			"status", event.Status,
			"error", err,
		)
	}
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(scope) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
