package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// Terminal reports whether a dispatch needs no further delivery.
func (s DispatchStatus) Terminal() bool {
	return s == StatusCompleted
}

// DispatchEvent is one status change of a queued job. Events for the same
// DispatchID overwrite each other; a completed dispatch is never re-run.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	MatchID      string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
