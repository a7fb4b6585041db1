package match

import "context"

type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	// TransitionStatus moves the match from one of from to to only when the
	// stored status still matches. It reports whether a row changed.
	TransitionStatus(ctx context.Context, matchID string, from []Status, to Status, result string) (bool, error)
	Upsert(ctx context.Context, m Match) error
}
