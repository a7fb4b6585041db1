package cache

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	basecache "github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
)

// ScoringRepository caches rule sets by ID, misses included. UpsertRules
// evicts the entry.
type ScoringRepository struct {
	next  scoring.Repository
	cache *basecache.Store
}

func NewScoringRepository(next scoring.Repository, cache *basecache.Store) *ScoringRepository {
	return &ScoringRepository{next: next, cache: cache}
}

type cachedRules struct {
	value  scoring.Rules
	exists bool
}

func (r *ScoringRepository) GetRules(ctx context.Context, rulesID string) (scoring.Rules, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, rulesCacheKey(rulesID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetRules(ctx, rulesID)
		if err != nil {
			return nil, err
		}
		return cachedRules{value: item, exists: exists}, nil
	})
	if err != nil {
		return scoring.Rules{}, false, err
	}

	cached, _ := v.(cachedRules)
	return cloneRules(cached.value), cached.exists, nil
}

func (r *ScoringRepository) UpsertRules(ctx context.Context, rules scoring.Rules) error {
	if err := r.next.UpsertRules(ctx, rules); err != nil {
		return err
	}
	r.cache.Delete(ctx, rulesCacheKey(rules.ID))
	return nil
}

func rulesCacheKey(rulesID string) string {
	return "scoring:rules:" + rulesID
}

func cloneRules(in scoring.Rules) scoring.Rules {
	out := in
	if in.StrikeRateBands != nil {
		out.StrikeRateBands = append([]scoring.Threshold{}, in.StrikeRateBands...)
	}
	if in.EconomyBands != nil {
		out.EconomyBands = append([]scoring.Threshold{}, in.EconomyBands...)
	}
	return out
}
