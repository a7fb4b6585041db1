package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	TotalPoints decimal.Decimal `json:"totalPoints"`
	TeamID      string          `json:"teamId"`
}

type UserStanding struct {
	ContestID    string          `json:"contestId"`
	UserID       string          `json:"userId"`
	TeamID       string          `json:"teamId"`
	Rank         int             `json:"rank"`
	TotalEntries int             `json:"totalEntries"`
	Percentile   int             `json:"percentile"`
	TotalPoints  decimal.Decimal `json:"totalPoints"`
}

type LeaderboardService struct {
	contestRepo contest.Repository
	teamRepo    fantasyteam.Repository
	cache       *cache.Store
	logger      *logging.Logger
}

func NewLeaderboardService(contestRepo contest.Repository, teamRepo fantasyteam.Repository, store *cache.Store, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		cache:       store,
		logger:      logger,
	}
}

// RankContest reads every team of the contest, assigns competition ranks and
// persists them. The returned slice is in leaderboard order.
func (s *LeaderboardService) RankContest(ctx context.Context, contestID string) ([]fantasyteam.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RankContest")
	defer span.End()

	teams, err := s.teamRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list teams contest=%s: %w", contestID, err)
	}

	ranked := fantasyteam.Rank(teams)
	if len(ranked) > 0 {
		updates := make([]fantasyteam.RankUpdate, 0, len(ranked))
		for _, team := range ranked {
			updates = append(updates, fantasyteam.RankUpdate{TeamID: team.ID, Rank: team.Rank})
		}
		if err := s.teamRepo.UpdateRanks(ctx, contestID, updates); err != nil {
			return nil, fmt.Errorf("update team ranks contest=%s: %w", contestID, err)
		}
	}

	s.invalidate(ctx, contestID)
	return ranked, nil
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, contestID string) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	ranked, err := s.rankedTeams(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return toLeaderboardEntries(ranked), nil
}

// GetUserStanding returns the user's best-ranked team in the contest.
func (s *LeaderboardService) GetUserStanding(ctx context.Context, contestID, userID string) (UserStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserStanding")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserStanding{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	ranked, err := s.rankedTeams(ctx, contestID)
	if err != nil {
		return UserStanding{}, err
	}

	for _, team := range ranked {
		if team.UserID != userID {
			continue
		}
		return UserStanding{
			ContestID:    contestID,
			UserID:       userID,
			TeamID:       team.ID,
			Rank:         team.Rank,
			TotalEntries: len(ranked),
			Percentile:   fantasyteam.Percentile(team.Rank, len(ranked)),
			TotalPoints:  team.TotalPoints,
		}, nil
	}

	return UserStanding{}, fmt.Errorf("%w: user=%s has no team in contest=%s", ErrNotFound, userID, contestID)
}

func (s *LeaderboardService) rankedTeams(ctx context.Context, contestID string) ([]fantasyteam.Team, error) {
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	return cache.Load(ctx, s.cache, leaderboardCacheKey(contestID), func(ctx context.Context) ([]fantasyteam.Team, error) {
		_, exists, err := s.contestRepo.GetByID(ctx, contestID)
		if err != nil {
			return nil, fmt.Errorf("get contest=%s: %w", contestID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: contest=%s", ErrNotFound, contestID)
		}

		teams, err := s.teamRepo.ListByContest(ctx, contestID)
		if err != nil {
			return nil, fmt.Errorf("list teams contest=%s: %w", contestID, err)
		}
		return fantasyteam.Rank(teams), nil
	})
}

func (s *LeaderboardService) invalidate(ctx context.Context, contestID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, leaderboardCacheKey(contestID))
}

func leaderboardCacheKey(contestID string) string {
	return "leaderboard:" + contestID
}

func toLeaderboardEntries(ranked []fantasyteam.Team) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(ranked))
	for _, team := range ranked {
		out = append(out, LeaderboardEntry{
			Rank:        team.Rank,
			UserID:      team.UserID,
			DisplayName: team.DisplayName,
			TotalPoints: team.TotalPoints,
			TeamID:      team.ID,
		})
	}
	return out
}
