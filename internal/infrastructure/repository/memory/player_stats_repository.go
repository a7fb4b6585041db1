package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	store *Store
}

func NewPlayerStatsRepository(store *Store) *PlayerStatsRepository {
	return &PlayerStatsRepository{store: store}
}

func (r *PlayerStatsRepository) ListByMatch(_ context.Context, matchID string) ([]playerstats.MatchStat, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byPlayer := r.store.stats[matchID]
	out := make([]playerstats.MatchStat, 0, len(byPlayer))
	for _, stat := range byPlayer {
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *PlayerStatsRepository) UpsertBatch(_ context.Context, stats []playerstats.MatchStat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stat := range stats {
		byPlayer, ok := r.store.stats[stat.MatchID]
		if !ok {
			byPlayer = make(map[string]playerstats.MatchStat)
			r.store.stats[stat.MatchID] = byPlayer
		}
		byPlayer[stat.PlayerID] = stat
	}
	return nil
}
