package fantasyteam

import "context"

type Repository interface {
	ListByContest(ctx context.Context, contestID string) ([]Team, error)
	CountByContest(ctx context.Context, contestID string) (int, error)
	Create(ctx context.Context, team Team) error
	UpdateScores(ctx context.Context, contestID string, updates []ScoreUpdate) error
	UpdateRanks(ctx context.Context, contestID string, updates []RankUpdate) error
}
