package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) ListByMatch(ctx context.Context, matchID string) ([]playerstats.MatchStat, error) {
	query, args, err := qb.Select(qb.Columns(matchPlayerStatModel{})...).From("match_player_stats").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("player_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match player stats query: %w", err)
	}

	var rows []matchPlayerStatModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match player stats match=%s: %w", matchID, err)
	}

	out := make([]playerstats.MatchStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstats.MatchStat{
			MatchID:  row.MatchID,
			PlayerID: row.PlayerID,
			Counters: playerstats.Counters{
				Runs:         row.Runs,
				BallsFaced:   row.BallsFaced,
				Fours:        row.Fours,
				Sixes:        row.Sixes,
				Wickets:      row.Wickets,
				OversBowled:  row.OversBowled,
				RunsConceded: row.RunsConceded,
				Maidens:      row.Maidens,
				Catches:      row.Catches,
				Stumpings:    row.Stumpings,
				RunOuts:      row.RunOuts,
			},
			FantasyPoints: row.FantasyPoints,
			RulesID:       row.RulesID,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *PlayerStatsRepository) UpsertBatch(ctx context.Context, stats []playerstats.MatchStat) error {
	if len(stats) == 0 {
		return nil
	}

	models := make([]matchPlayerStatModel, 0, len(stats))
	for _, stat := range stats {
		updatedAt := stat.UpdatedAt.UTC()
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		c := stat.Counters
		models = append(models, matchPlayerStatModel{
			MatchID:       stat.MatchID,
			PlayerID:      stat.PlayerID,
			Runs:          c.Runs,
			BallsFaced:    c.BallsFaced,
			Fours:         c.Fours,
			Sixes:         c.Sixes,
			Wickets:       c.Wickets,
			OversBowled:   c.OversBowled,
			RunsConceded:  c.RunsConceded,
			Maidens:       c.Maidens,
			Catches:       c.Catches,
			Stumpings:     c.Stumpings,
			RunOuts:       c.RunOuts,
			FantasyPoints: stat.FantasyPoints,
			RulesID:       stat.RulesID,
			UpdatedAt:     updatedAt,
		})
	}

	// Single statement: the whole batch lands or none of it does.
	query, args, err := qb.InsertModels("match_player_stats", models, `ON CONFLICT (match_public_id, player_public_id)
DO UPDATE SET
    runs = EXCLUDED.runs,
    balls_faced = EXCLUDED.balls_faced,
    fours = EXCLUDED.fours,
    sixes = EXCLUDED.sixes,
    wickets = EXCLUDED.wickets,
    overs_bowled = EXCLUDED.overs_bowled,
    runs_conceded = EXCLUDED.runs_conceded,
    maidens = EXCLUDED.maidens,
    catches = EXCLUDED.catches,
    stumpings = EXCLUDED.stumpings,
    run_outs = EXCLUDED.run_outs,
    fantasy_points = EXCLUDED.fantasy_points,
    rules_public_id = EXCLUDED.rules_public_id,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert match player stats query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match player stats match=%s count=%d: %w", stats[0].MatchID, len(stats), err)
	}
	return nil
}
