package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type FantasyTeamRepository struct {
	db *sqlx.DB
}

func NewFantasyTeamRepository(db *sqlx.DB) *FantasyTeamRepository {
	return &FantasyTeamRepository{db: db}
}

func (r *FantasyTeamRepository) ListByContest(ctx context.Context, contestID string) ([]fantasyteam.Team, error) {
	query, args, err := qb.Select("*").From("fantasy_teams").
		Where(
			qb.Eq("contest_public_id", contestID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("submitted_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fantasy teams query: %w", err)
	}

	var rows []fantasyTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fantasy teams contest=%s: %w", contestID, err)
	}

	out := make([]fantasyteam.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasyteam.Team{
			ID:            row.PublicID,
			ContestID:     row.ContestID,
			UserID:        row.UserID,
			DisplayName:   row.DisplayName,
			PlayerIDs:     []string(row.PlayerIDs),
			CaptainID:     row.CaptainID,
			ViceCaptainID: row.ViceCaptainID,
			TotalPoints:   row.TotalPoints,
			Rank:          row.Rank,
			SubmittedAt:   row.SubmittedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *FantasyTeamRepository) CountByContest(ctx context.Context, contestID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("fantasy_teams").
		Where(
			qb.Eq("contest_public_id", contestID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count fantasy teams query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count fantasy teams contest=%s: %w", contestID, err)
	}
	return count, nil
}

func (r *FantasyTeamRepository) Create(ctx context.Context, team fantasyteam.Team) error {
	model := fantasyTeamInsertModel{
		PublicID:      team.ID,
		ContestID:     team.ContestID,
		UserID:        team.UserID,
		DisplayName:   team.DisplayName,
		PlayerIDs:     append(pq.StringArray(nil), team.PlayerIDs...),
		CaptainID:     team.CaptainID,
		ViceCaptainID: team.ViceCaptainID,
		TotalPoints:   team.TotalPoints,
		SubmittedAt:   team.SubmittedAt.UTC(),
	}
	query, args, err := qb.InsertModel("fantasy_teams", model, "")
	if err != nil {
		return fmt.Errorf("build insert fantasy team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fantasy team=%s contest=%s: %w", team.ID, team.ContestID, err)
	}
	return nil
}

const updateTeamScoresQuery = `UPDATE fantasy_teams AS t
SET total_points = v.total_points, updated_at = NOW()
FROM unnest($1::text[], $2::numeric[]) AS v(public_id, total_points)
WHERE t.public_id = v.public_id AND t.contest_public_id = $3 AND t.deleted_at IS NULL`

func (r *FantasyTeamRepository) UpdateScores(ctx context.Context, contestID string, updates []fantasyteam.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]string, 0, len(updates))
	points := make([]string, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.TeamID)
		points = append(points, u.TotalPoints.String())
	}

	if _, err := r.db.ExecContext(ctx, updateTeamScoresQuery, pq.Array(ids), pq.Array(points), contestID); err != nil {
		return fmt.Errorf("update fantasy team scores contest=%s count=%d: %w", contestID, len(updates), err)
	}
	return nil
}

const updateTeamRanksQuery = `UPDATE fantasy_teams AS t
SET rank = v.rank
FROM unnest($1::text[], $2::int[]) AS v(public_id, rank)
WHERE t.public_id = v.public_id AND t.contest_public_id = $3 AND t.deleted_at IS NULL`

func (r *FantasyTeamRepository) UpdateRanks(ctx context.Context, contestID string, updates []fantasyteam.RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]string, 0, len(updates))
	ranks := make([]int64, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.TeamID)
		ranks = append(ranks, int64(u.Rank))
	}

	if _, err := r.db.ExecContext(ctx, updateTeamRanksQuery, pq.Array(ids), pq.Array(ranks), contestID); err != nil {
		return fmt.Errorf("update fantasy team ranks contest=%s count=%d: %w", contestID, len(updates), err)
	}
	return nil
}
