package scoring

import "context"

type Repository interface {
	GetRules(ctx context.Context, rulesID string) (Rules, bool, error)
	UpsertRules(ctx context.Context, rules Rules) error
}
