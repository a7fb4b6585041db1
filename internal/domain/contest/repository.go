package contest

import "context"

type Repository interface {
	GetByID(ctx context.Context, contestID string) (Contest, bool, error)
	ListByMatch(ctx context.Context, matchID string, statuses ...Status) ([]Contest, error)
	Create(ctx context.Context, c Contest) error
	// TransitionByMatch moves every contest of matchID in status from to status to
	// and returns the IDs it changed.
	TransitionByMatch(ctx context.Context, matchID string, from, to Status) ([]string, error)
}
