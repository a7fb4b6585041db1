package memory

import (
	"context"
	"slices"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) TransitionStatus(_ context.Context, matchID string, from []match.Status, to match.Status, result string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.matches[matchID]
	if !ok || !slices.Contains(from, item.Status) {
		return false, nil
	}
	item.Status = to
	if result != "" {
		item.Result = result
	}
	item.UpdatedAt = r.store.now().UTC()
	r.store.matches[matchID] = item
	return true, nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.matches[m.ID] = cloneMatch(m)
	return nil
}
