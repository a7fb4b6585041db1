package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
)

type ContestRepository struct {
	store *Store
}

func NewContestRepository(store *Store) *ContestRepository {
	return &ContestRepository{store: store}
}

func (r *ContestRepository) GetByID(_ context.Context, contestID string) (contest.Contest, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.contests[contestID]
	if !ok {
		return contest.Contest{}, false, nil
	}
	return cloneContest(item), true, nil
}

func (r *ContestRepository) ListByMatch(_ context.Context, matchID string, statuses ...contest.Status) ([]contest.Contest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]contest.Contest, 0)
	for _, item := range r.store.contests {
		if item.MatchID != matchID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, item.Status) {
			continue
		}
		out = append(out, cloneContest(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ContestRepository) Create(_ context.Context, c contest.Contest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.contests[c.ID]; exists {
		return fmt.Errorf("contest %s already exists", c.ID)
	}
	r.store.contests[c.ID] = cloneContest(c)
	return nil
}

func (r *ContestRepository) TransitionByMatch(_ context.Context, matchID string, from, to contest.Status) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now().UTC()
	changed := make([]string, 0)
	for contestID, item := range r.store.contests {
		if item.MatchID != matchID || item.Status != from {
			continue
		}
		item.Status = to
		item.UpdatedAt = now
		r.store.contests[contestID] = item
		changed = append(changed, contestID)
	}
	sort.Strings(changed)
	return changed, nil
}
