package jobscheduler

import "context"

type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	// GetStatus reports the latest status recorded for a dispatch ID.
	GetStatus(ctx context.Context, dispatchID string) (DispatchStatus, bool, error)
}
