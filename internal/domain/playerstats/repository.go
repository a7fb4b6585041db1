package playerstats

import "context"

type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]MatchStat, error)
	// UpsertBatch writes all stats of one feed batch atomically.
	UpsertBatch(ctx context.Context, stats []MatchStat) error
}
