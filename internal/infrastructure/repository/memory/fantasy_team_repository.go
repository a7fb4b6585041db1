package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
)

type FantasyTeamRepository struct {
	store *Store
}

func NewFantasyTeamRepository(store *Store) *FantasyTeamRepository {
	return &FantasyTeamRepository{store: store}
}

func (r *FantasyTeamRepository) ListByContest(_ context.Context, contestID string) ([]fantasyteam.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := r.store.teams[contestID]
	out := make([]fantasyteam.Team, 0, len(items))
	for _, item := range items {
		out = append(out, cloneTeam(item))
	}
	return out, nil
}

func (r *FantasyTeamRepository) CountByContest(_ context.Context, contestID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.teams[contestID]), nil
}

func (r *FantasyTeamRepository) Create(_ context.Context, team fantasyteam.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.teams[team.ContestID] {
		if existing.ID == team.ID {
			return fmt.Errorf("team %s already exists", team.ID)
		}
	}
	r.store.teams[team.ContestID] = append(r.store.teams[team.ContestID], cloneTeam(team))
	return nil
}

func (r *FantasyTeamRepository) UpdateScores(_ context.Context, contestID string, updates []fantasyteam.ScoreUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byID := make(map[string]fantasyteam.ScoreUpdate, len(updates))
	for _, u := range updates {
		byID[u.TeamID] = u
	}
	now := r.store.now().UTC()
	teams := r.store.teams[contestID]
	for i := range teams {
		if u, ok := byID[teams[i].ID]; ok {
			teams[i].TotalPoints = u.TotalPoints
			teams[i].UpdatedAt = now
		}
	}
	return nil
}

func (r *FantasyTeamRepository) UpdateRanks(_ context.Context, contestID string, updates []fantasyteam.RankUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byID := make(map[string]int, len(updates))
	for _, u := range updates {
		byID[u.TeamID] = u.Rank
	}
	teams := r.store.teams[contestID]
	for i := range teams {
		if rank, ok := byID[teams[i].ID]; ok {
			teams[i].Rank = rank
		}
	}
	return nil
}
