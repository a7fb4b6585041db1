package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

// PlayerPoints maps player ID to fantasy points under one rule set.
type PlayerPoints map[string]decimal.Decimal

// PointsFromStats scores every stat row with rules. Rows are recomputed from
// counters so contests on different rule sets never share a stale value.
func PointsFromStats(stats []playerstats.MatchStat, rules scoring.EffectiveRules) PlayerPoints {
	out := make(PlayerPoints, len(stats))
	for _, stat := range stats {
		out[stat.PlayerID] = scoring.Calculate(stat.Counters, rules)
	}
	return out
}

// TeamTotal sums a roster, applying captain and vice-captain multipliers.
// Players without a stat row contribute zero.
func TeamTotal(team fantasyteam.Team, points PlayerPoints, rules scoring.EffectiveRules) decimal.Decimal {
	total := decimal.Zero
	for _, playerID := range team.PlayerIDs {
		value, ok := points[playerID]
		if !ok {
			continue
		}
		switch playerID {
		case team.CaptainID:
			value = value.Mul(rules.CaptainMultiplier)
		case team.ViceCaptainID:
			value = value.Mul(rules.ViceCaptainMultiplier)
		}
		total = total.Add(value)
	}
	return scoring.Round(total)
}

type Aggregator struct {
	teamRepo fantasyteam.Repository
	logger   *logging.Logger
}

func NewAggregator(teamRepo fantasyteam.Repository, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Aggregator{teamRepo: teamRepo, logger: logger}
}

// AggregateContest recomputes and persists every team total of one contest.
// Re-running with the same points yields the same totals.
func (a *Aggregator) AggregateContest(ctx context.Context, contestID string, points PlayerPoints, rules scoring.EffectiveRules) ([]TeamPoints, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Aggregator.AggregateContest")
	defer span.End()

	teams, err := a.teamRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list teams contest=%s: %w", contestID, err)
	}
	if len(teams) == 0 {
		return nil, nil
	}

	updates := make([]fantasyteam.ScoreUpdate, 0, len(teams))
	out := make([]TeamPoints, 0, len(teams))
	for _, team := range teams {
		total := TeamTotal(team, points, rules)
		updates = append(updates, fantasyteam.ScoreUpdate{TeamID: team.ID, TotalPoints: total})
		out = append(out, TeamPoints{TeamID: team.ID, UserID: team.UserID, TotalPoints: total})
	}

	if err := a.teamRepo.UpdateScores(ctx, contestID, updates); err != nil {
		return nil, fmt.Errorf("update team scores contest=%s: %w", contestID, err)
	}

	a.logger.DebugContext(ctx, "contest aggregated", "contest_id", contestID, "teams", len(updates))
	return out, nil
}
