package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	store *Store
}

func NewJobDispatchRepository(store *Store) *JobDispatchRepository {
	return &JobDispatchRepository{store: store}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.dispatches[event.DispatchID] = event
	return nil
}

func (r *JobDispatchRepository) GetStatus(_ context.Context, dispatchID string) (jobscheduler.DispatchStatus, bool, error) {
	event, ok := r.Get(dispatchID)
	if !ok {
		return "", false, nil
	}
	return event.Status, true, nil
}

// Get returns the latest recorded event for a dispatch ID.
func (r *JobDispatchRepository) Get(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	event, ok := r.store.dispatches[dispatchID]
	return event, ok
}
