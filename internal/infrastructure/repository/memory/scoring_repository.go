package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
)

type ScoringRepository struct {
	store *Store
}

func NewScoringRepository(store *Store) *ScoringRepository {
	return &ScoringRepository{store: store}
}

func (r *ScoringRepository) GetRules(_ context.Context, rulesID string) (scoring.Rules, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rules, ok := r.store.rules[rulesID]
	return rules, ok, nil
}

func (r *ScoringRepository) UpsertRules(_ context.Context, rules scoring.Rules) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rules.StrikeRateBands = cloneBands(rules.StrikeRateBands)
	rules.EconomyBands = cloneBands(rules.EconomyBands)
	r.store.rules[rules.ID] = rules
	return nil
}

func cloneBands(in []scoring.Threshold) []scoring.Threshold {
	if in == nil {
		return nil
	}
	return append([]scoring.Threshold{}, in...)
}
